package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn and turns a panic into an error log instead of tearing the
// process down. Used for the opportunistic sweep goroutine and cron jobs.
func Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", "safe.Run"),
				slog.String("stack", stackTrace()),
			)
		}
	}()

	fn()
}

func stackTrace() string {
	lines := strings.Split(string(debug.Stack()), "\n")
	// drop the frames belonging to this package
	keep := lines
	if len(lines) > 5 {
		keep = append(lines[:1], lines[5:]...)
	}
	if len(keep) > 21 {
		keep = append(keep[:21], "... (truncated)")
	}
	return strings.Join(keep, "\n")
}
