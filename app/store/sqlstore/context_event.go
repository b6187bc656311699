package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/rowdybard/banterbox/pkg/register"
	"github.com/rowdybard/banterbox/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ContextEventStore = NewContextEventStore(provider)
	})
}

type ContextEventStore struct {
	CommonFields
}

func NewContextEventStore(provider SqlProviderAchieve) *ContextEventStore {
	repo := &ContextEventStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONTEXT_EVENT)
	repo.SetAllColumns("id", "owner_id", "scope_id", "event_type", "payload", "summary",
		"original_text", "response_text", "importance", "participants", "created_at", "expires_at")
	return repo
}

func (s *ContextEventStore) Create(ctx context.Context, data *types.ContextEvent) error {
	query := sq.Insert(s.GetTable()).
		Columns("id", "owner_id", "scope_id", "event_type", "payload", "summary",
			"original_text", "response_text", "importance", "participants", "created_at", "expires_at").
		Values(data.ID, data.OwnerID, data.ScopeID, data.EventType, data.Payload, data.Summary,
			data.OriginalText, data.ResponseText, data.Importance, data.Participants, data.CreatedAt, data.ExpiresAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return err
	}
	return nil
}

func (s *ContextEventStore) GetOne(ctx context.Context, id string) (*types.ContextEvent, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var event types.ContextEvent
	if err := s.GetReplica(ctx).Get(&event, queryString, args...); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *ContextEventStore) ListRecent(ctx context.Context, opts types.ListContextEventOptions, limit uint64) ([]*types.ContextEvent, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"owner_id": opts.OwnerID}).
		OrderBy("created_at DESC, id DESC")

	if opts.ScopeID != "" {
		query = query.Where(sq.Eq{"scope_id": opts.ScopeID})
	}
	if opts.EventType != "" {
		query = query.Where(sq.Eq{"event_type": opts.EventType})
	}
	if opts.Since > 0 {
		query = query.Where(sq.GtOrEq{"created_at": opts.Since})
	}
	if opts.ActiveAt > 0 {
		query = query.Where(sq.Gt{"expires_at": opts.ActiveAt})
	}
	if limit != types.NO_PAGING {
		query = query.Limit(limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []*types.ContextEvent
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ContextEventStore) AttachResponse(ctx context.Context, id, responseText string) error {
	query := sq.Update(s.GetTable()).Set("response_text", responseText).Where(sq.Eq{"id": id})
	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}
	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return err
	}
	return nil
}

func (s *ContextEventStore) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	query := sq.Delete(s.GetTable()).Where(sq.Lt{"expires_at": now})
	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}
	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (s *ContextEventStore) Total(ctx context.Context, ownerID string, activeAt int64) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"owner_id": ownerID})
	if activeAt > 0 {
		query = query.Where(sq.Gt{"expires_at": activeAt})
	}
	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
