package readstore

import (
	"context"
	"errors"

	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PoolReadStore struct {
	db db.DBTX
}

func NewPoolReadStore(dbtx db.DBTX) *PoolReadStore {
	return &PoolReadStore{db: dbtx}
}

func (s *PoolReadStore) FindAvailabilityByID(ctx context.Context, id uuid.UUID) (*queries.PoolAvailabilityView, error) {
	row := s.db.QueryRow(ctx, `
		SELECT p.id, p.scope_id, p.scope_type, p.total_capacity,
			p.available_capacity, p.blocked_capacity, p.confirmed_count,
			COALESCE(o.max_overbook_percentage, 0),
			COALESCE(o.is_active, false)
		FROM capacity_pools p
		LEFT JOIN overbooking_configs o ON o.pool_id = p.id
		WHERE p.id = $1`, id)

	var (
		v          queries.PoolAvailabilityView
		maxPercent int32
	)
	err := row.Scan(&v.PoolID, &v.ScopeID, &v.ScopeType, &v.TotalCapacity,
		&v.Available, &v.Blocked, &v.Confirmed, &maxPercent, &v.OverbookingActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("capacity pool not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pool availability", err)
	}

	// Percentage and risk level are always derived from the live counters,
	// never read back from a stored column that could drift.
	if v.TotalCapacity != nil {
		v.OverbookPercent = overbooking.CurrentPercent(*v.TotalCapacity, v.Blocked+v.Confirmed)
		v.RiskLevel = overbooking.BucketFor(v.OverbookPercent, maxPercent).String()
	} else {
		v.RiskLevel = overbooking.RiskLow.String()
	}
	return &v, nil
}
