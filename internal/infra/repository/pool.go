package repository

import (
	"context"
	"errors"
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PoolRepository struct{}

func NewPoolRepository() *PoolRepository {
	return &PoolRepository{}
}

const poolColumns = `id, scope_id, scope_type, total_capacity, available_capacity,
	blocked_capacity, confirmed_count, event_start, created_at, updated_at`

func (r *PoolRepository) Create(ctx context.Context, dbtx db.DBTX, pool *capacity.Pool) error {
	_, err := dbtx.Exec(ctx, `
		INSERT INTO capacity_pools
			(id, scope_id, scope_type, total_capacity, available_capacity,
			 blocked_capacity, confirmed_count, event_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		pool.ID(), pool.ScopeID(), string(pool.ScopeType()), pool.Total(),
		pool.Available(), pool.Blocked(), pool.Confirmed(), pool.EventStart(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("pool already exists for scope", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create capacity pool", err)
	}
	return nil
}

// FindByIDForUpdate takes the row lock that serializes all capacity
// mutations for one pool. Callers must hold an open transaction.
func (r *PoolRepository) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*capacity.Pool, error) {
	row := dbtx.QueryRow(ctx,
		`SELECT `+poolColumns+` FROM capacity_pools WHERE id = $1 FOR UPDATE`, id)
	return scanPool(row)
}

func (r *PoolRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*capacity.Pool, error) {
	row := dbtx.QueryRow(ctx,
		`SELECT `+poolColumns+` FROM capacity_pools WHERE id = $1`, id)
	return scanPool(row)
}

// Save persists the pool counters mutated by the domain operations. The
// caller holds the FOR UPDATE lock, so a plain UPDATE is race-free.
func (r *PoolRepository) Save(ctx context.Context, dbtx db.DBTX, pool *capacity.Pool) error {
	tag, err := dbtx.Exec(ctx, `
		UPDATE capacity_pools
		SET total_capacity = $2,
			available_capacity = $3,
			blocked_capacity = $4,
			confirmed_count = $5,
			event_start = $6,
			updated_at = now()
		WHERE id = $1`,
		pool.ID(), pool.Total(), pool.Available(), pool.Blocked(),
		pool.Confirmed(), pool.EventStart(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save capacity pool", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("capacity pool not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanPool(row pgx.Row) (*capacity.Pool, error) {
	var (
		id, scopeID          uuid.UUID
		scopeType            string
		total                *int32
		available, blocked   int32
		confirmed            int32
		eventStart           *time.Time
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &scopeID, &scopeType, &total, &available,
		&blocked, &confirmed, &eventStart, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("capacity pool not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan capacity pool", err)
	}
	return capacity.ReconstructPool(
		id, scopeID, capacity.ScopeType(scopeType), total,
		available, blocked, confirmed, eventStart, createdAt, updatedAt,
	), nil
}
