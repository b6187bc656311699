package process

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/rowdybard/banterbox/app/logic/v1"
	"github.com/rowdybard/banterbox/pkg/register"
	"github.com/rowdybard/banterbox/pkg/safe"
)

func init() {
	register.RegisterFunc(ProcessKey{}, func(p *Process) {
		// The write path already sweeps opportunistically; this nightly pass
		// covers owners that went quiet before their rows expired.
		if _, err := p.Cron().AddFunc("0 4 * * *", func() {
			safe.Run(func() {
				runDeepSweep(p)
			})
		}); err != nil {
			slog.Error("failed to schedule nightly sweep", slog.Any("error", err))
		}
	})
}

func runDeepSweep(p *Process) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*10)
	defer cancel()

	started := time.Now()
	removed, err := v1.NewMaintenanceLogic(ctx, p.Core()).SweepExpired()
	if err != nil {
		slog.Error("nightly sweep failed", slog.Any("error", err))
		return
	}
	slog.Info("nightly sweep completed",
		slog.Int64("removed", removed),
		slog.Duration("elapsed", time.Since(started)))
}
