package queries

import (
	"context"
	"log/slog"

	"event-capacity/internal/infra"
	"event-capacity/internal/pkg/errs"

	"github.com/google/uuid"
)

type PoolReadStore interface {
	FindAvailabilityByID(ctx context.Context, id uuid.UUID) (*PoolAvailabilityView, error)
}

// AvailabilityCache is the redis snapshot in front of the pool read store.
// Cache trouble degrades to a DB read, never to an error.
type AvailabilityCache interface {
	Get(ctx context.Context, poolID uuid.UUID) (*PoolAvailabilityView, error)
	Set(ctx context.Context, view *PoolAvailabilityView) error
	Invalidate(ctx context.Context, poolID uuid.UUID) error
}

type PoolQueries interface {
	GetAvailability(ctx context.Context, poolID uuid.UUID) (*PoolAvailabilityView, error)
}

type poolQueriesImpl struct {
	store PoolReadStore
	cache AvailabilityCache
}

func NewPoolQueries(store PoolReadStore, cache AvailabilityCache) PoolQueries {
	return &poolQueriesImpl{store: store, cache: cache}
}

func (q *poolQueriesImpl) GetAvailability(ctx context.Context, poolID uuid.UUID) (*PoolAvailabilityView, error) {
	if cached, err := q.cache.Get(ctx, poolID); err != nil {
		slog.Warn("availability cache read failed", "pool_id", poolID, "error", err.Error())
	} else if cached != nil {
		return cached, nil
	}

	view, err := q.store.FindAvailabilityByID(ctx, poolID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrPoolNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := q.cache.Set(ctx, view); err != nil {
		slog.Warn("availability cache write failed", "pool_id", poolID, "error", err.Error())
	}
	return view, nil
}
