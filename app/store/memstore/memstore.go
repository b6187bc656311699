package memstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/rowdybard/banterbox/pkg/types"
)

// ErrUnavailable simulates a storage outage. Tests flip it on via
// SetFailing to exercise the degraded paths.
var ErrUnavailable = errors.New("memstore: storage unavailable")

// ContextEventStore is the in-memory implementation used by unit tests and
// by storage-less deployments. The store is disposable by design, so a map
// behind a mutex is a legitimate backend, not just a fake.
type ContextEventStore struct {
	mu      sync.RWMutex
	rows    map[string]*types.ContextEvent
	failing bool
}

func NewContextEventStore() *ContextEventStore {
	return &ContextEventStore{rows: make(map[string]*types.ContextEvent)}
}

func (s *ContextEventStore) SetFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *ContextEventStore) GetTable(key ...interface{}) string {
	return types.TABLE_CONTEXT_EVENT.Name()
}

func (s *ContextEventStore) Create(ctx context.Context, data *types.ContextEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrUnavailable
	}
	cp := *data
	s.rows[data.ID] = &cp
	return nil
}

func (s *ContextEventStore) GetOne(ctx context.Context, id string) (*types.ContextEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, ErrUnavailable
	}
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (s *ContextEventStore) ListRecent(ctx context.Context, opts types.ListContextEventOptions, limit uint64) ([]*types.ContextEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, ErrUnavailable
	}

	var list []*types.ContextEvent
	for _, row := range s.rows {
		if row.OwnerID != opts.OwnerID {
			continue
		}
		if opts.ScopeID != "" && row.ScopeID != opts.ScopeID {
			continue
		}
		if opts.EventType != "" && row.EventType != opts.EventType {
			continue
		}
		if opts.Since > 0 && row.CreatedAt < opts.Since {
			continue
		}
		if opts.ActiveAt > 0 && row.ExpiresAt <= opts.ActiveAt {
			continue
		}
		cp := *row
		list = append(list, &cp)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID > list[j].ID
	})

	if limit != types.NO_PAGING && uint64(len(list)) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *ContextEventStore) AttachResponse(ctx context.Context, id, responseText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrUnavailable
	}
	row, ok := s.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.ResponseText = responseText
	return nil
}

func (s *ContextEventStore) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrUnavailable
	}
	var removed int64
	for id, row := range s.rows {
		if row.ExpiresAt < now {
			delete(s.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (s *ContextEventStore) Total(ctx context.Context, ownerID string, activeAt int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return 0, ErrUnavailable
	}
	var total int64
	for _, row := range s.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if activeAt > 0 && row.ExpiresAt <= activeAt {
			continue
		}
		total++
	}
	return total, nil
}

// PriorResponseStore is the in-memory twin for already-sent responses.
type PriorResponseStore struct {
	mu      sync.RWMutex
	rows    map[string]*types.PriorResponse
	failing bool
}

func NewPriorResponseStore() *PriorResponseStore {
	return &PriorResponseStore{rows: make(map[string]*types.PriorResponse)}
}

func (s *PriorResponseStore) SetFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *PriorResponseStore) GetTable(key ...interface{}) string {
	return types.TABLE_PRIOR_RESPONSE.Name()
}

func (s *PriorResponseStore) Create(ctx context.Context, data *types.PriorResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrUnavailable
	}
	cp := *data
	s.rows[data.ID] = &cp
	return nil
}

func (s *PriorResponseStore) ListRecent(ctx context.Context, opts types.ListPriorResponseOptions, limit uint64) ([]*types.PriorResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, ErrUnavailable
	}

	var list []*types.PriorResponse
	for _, row := range s.rows {
		if row.OwnerID != opts.OwnerID {
			continue
		}
		if opts.ScopeID != "" && row.ScopeID != opts.ScopeID {
			continue
		}
		if opts.Since > 0 && row.CreatedAt < opts.Since {
			continue
		}
		if opts.ActiveAt > 0 && row.ExpiresAt <= opts.ActiveAt {
			continue
		}
		cp := *row
		list = append(list, &cp)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID > list[j].ID
	})

	if limit != types.NO_PAGING && uint64(len(list)) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *PriorResponseStore) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrUnavailable
	}
	var removed int64
	for id, row := range s.rows {
		if row.ExpiresAt < now {
			delete(s.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (s *PriorResponseStore) Total(ctx context.Context, ownerID string, activeAt int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return 0, ErrUnavailable
	}
	var total int64
	for _, row := range s.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if activeAt > 0 && row.ExpiresAt <= activeAt {
			continue
		}
		total++
	}
	return total, nil
}
