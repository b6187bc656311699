package memstore

import (
	"github.com/rowdybard/banterbox/app/store"
)

// Provider bundles the in-memory stores behind the same accessor surface as
// the sqlstore provider, so the core can swap backends.
type Provider struct {
	events    *ContextEventStore
	responses *PriorResponseStore
}

func NewProvider() *Provider {
	return &Provider{
		events:    NewContextEventStore(),
		responses: NewPriorResponseStore(),
	}
}

func (p *Provider) ContextEventStore() store.ContextEventStore {
	return p.events
}

func (p *Provider) PriorResponseStore() store.PriorResponseStore {
	return p.responses
}
