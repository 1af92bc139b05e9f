package repository

import (
	"context"
	"errors"
	"time"

	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OverbookingRepository struct{}

func NewOverbookingRepository() *OverbookingRepository {
	return &OverbookingRepository{}
}

const overbookingColumns = `pool_id, max_overbook_percentage, risk_level, is_active,
	alert_admins, notify_users, offer_alternatives, created_at, updated_at`

// Upsert covers both opting a pool into overbooking and later edits; a pool
// has at most one config row.
func (r *OverbookingRepository) Upsert(ctx context.Context, dbtx db.DBTX, cfg *overbooking.Config) error {
	_, err := dbtx.Exec(ctx, `
		INSERT INTO overbooking_configs
			(pool_id, max_overbook_percentage, risk_level, is_active,
			 alert_admins, notify_users, offer_alternatives, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (pool_id) DO UPDATE SET
			max_overbook_percentage = EXCLUDED.max_overbook_percentage,
			risk_level = EXCLUDED.risk_level,
			is_active = EXCLUDED.is_active,
			alert_admins = EXCLUDED.alert_admins,
			notify_users = EXCLUDED.notify_users,
			offer_alternatives = EXCLUDED.offer_alternatives,
			updated_at = now()`,
		cfg.PoolID(), cfg.MaxPercent(), string(cfg.RiskLevel()), cfg.IsActive(),
		cfg.AutoActions().AlertAdmins, cfg.AutoActions().NotifyUsers,
		cfg.AutoActions().OfferAlternatives,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("pool does not exist", err, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to upsert overbooking config", err)
	}
	return nil
}

// FindByPoolID returns nil, nil when the pool never opted into overbooking.
func (r *OverbookingRepository) FindByPoolID(ctx context.Context, dbtx db.DBTX, poolID uuid.UUID) (*overbooking.Config, error) {
	row := dbtx.QueryRow(ctx,
		`SELECT `+overbookingColumns+` FROM overbooking_configs WHERE pool_id = $1`, poolID)
	cfg, err := scanOverbookingConfig(row)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

func (r *OverbookingRepository) SaveRiskLevel(ctx context.Context, dbtx db.DBTX, poolID uuid.UUID, level overbooking.RiskLevel) error {
	tag, err := dbtx.Exec(ctx, `
		UPDATE overbooking_configs
		SET risk_level = $2, updated_at = now()
		WHERE pool_id = $1`,
		poolID, string(level),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save risk level", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("overbooking config not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanOverbookingConfig(row pgx.Row) (*overbooking.Config, error) {
	var (
		poolID               uuid.UUID
		maxPercent           int32
		riskLevel            string
		isActive             bool
		actions              overbooking.AutoActions
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&poolID, &maxPercent, &riskLevel, &isActive,
		&actions.AlertAdmins, &actions.NotifyUsers, &actions.OfferAlternatives,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("overbooking config not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan overbooking config", err)
	}
	return overbooking.ReconstructConfig(
		poolID, maxPercent, overbooking.RiskLevel(riskLevel), isActive,
		actions, createdAt, updatedAt,
	), nil
}
