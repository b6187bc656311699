package process

import (
	"github.com/robfig/cron/v3"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/pkg/register"
)

// Process owns the background schedule. Jobs register themselves through
// register hooks keyed by ProcessKey so wiring stays in each job file.
type Process struct {
	cron *cron.Cron
	core *core.Core
}

type ProcessKey struct{}

func NewProcess(core *core.Core) *Process {
	p := &Process{
		cron: cron.New(),
		core: core,
	}

	for _, h := range register.ResolveFuncHandlers[*Process](ProcessKey{}) {
		h(p)
	}

	return p
}

func (p *Process) Cron() *cron.Cron {
	return p.cron
}

func (p *Process) Core() *core.Core {
	return p.core
}

func (p *Process) Start() {
	p.cron.Start()
}

func (p *Process) Stop() {
	if p.cron != nil {
		ctx := p.cron.Stop()
		<-ctx.Done()
	}
}
