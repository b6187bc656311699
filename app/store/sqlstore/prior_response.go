package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/rowdybard/banterbox/pkg/register"
	"github.com/rowdybard/banterbox/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.PriorResponseStore = NewPriorResponseStore(provider)
	})
}

type PriorResponseStore struct {
	CommonFields
}

func NewPriorResponseStore(provider SqlProviderAchieve) *PriorResponseStore {
	repo := &PriorResponseStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_PRIOR_RESPONSE)
	repo.SetAllColumns("id", "owner_id", "scope_id", "response_text", "source_question",
		"response_kind", "confidence", "was_direct_question", "created_at", "expires_at")
	return repo
}

func (s *PriorResponseStore) Create(ctx context.Context, data *types.PriorResponse) error {
	query := sq.Insert(s.GetTable()).
		Columns("id", "owner_id", "scope_id", "response_text", "source_question",
			"response_kind", "confidence", "was_direct_question", "created_at", "expires_at").
		Values(data.ID, data.OwnerID, data.ScopeID, data.ResponseText, data.SourceQuestion,
			data.ResponseKind, data.Confidence, data.WasDirectQuestion, data.CreatedAt, data.ExpiresAt)

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

func (s *PriorResponseStore) ListRecent(ctx context.Context, opts types.ListPriorResponseOptions, limit uint64) ([]*types.PriorResponse, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"owner_id": opts.OwnerID}).
		OrderBy("created_at DESC, id DESC")

	if opts.ScopeID != "" {
		query = query.Where(sq.Eq{"scope_id": opts.ScopeID})
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

	var list []*types.PriorResponse
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *PriorResponseStore) DeleteExpired(ctx context.Context, now int64) (int64, error) {
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

func (s *PriorResponseStore) Total(ctx context.Context, ownerID string, activeAt int64) (int64, error) {
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
