package commands

import (
	"context"
	"log/slog"
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/infra"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/queries"
	"event-capacity/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreatePoolParams struct {
	ScopeID       uuid.UUID
	ScopeType     capacity.ScopeType
	TotalCapacity *int32
	EventStart    *time.Time
}

type ConfigureOverbookingParams struct {
	PoolID            uuid.UUID
	MaxPercent        int32
	Active            bool
	AlertAdmins       bool
	NotifyUsers       bool
	OfferAlternatives bool
}

type PoolCommands interface {
	CreatePool(ctx context.Context, params CreatePoolParams) (uuid.UUID, error)
	SetCapacity(ctx context.Context, poolID uuid.UUID, total *int32) error
	ConfigureOverbooking(ctx context.Context, params ConfigureOverbookingParams) error
}

type poolCommandsImpl struct {
	uow   shared.UnitOfWork
	cache queries.AvailabilityCache
}

func NewPoolCommands(uow shared.UnitOfWork, cache queries.AvailabilityCache) PoolCommands {
	return &poolCommandsImpl{uow: uow, cache: cache}
}

func (c *poolCommandsImpl) CreatePool(ctx context.Context, params CreatePoolParams) (uuid.UUID, error) {
	pool, err := capacity.NewPool(params.ScopeID, params.ScopeType, params.TotalCapacity, params.EventStart)
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Pools().Create(ctx, tx.DB(), pool); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrConcurrencyConflict)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return pool.ID(), nil
}

// SetCapacity changes the nominal total under the pool lock. Shrinking below
// the committed count is allowed; the pool simply stops granting until
// releases catch up.
func (c *poolCommandsImpl) SetCapacity(ctx context.Context, poolID uuid.UUID, total *int32) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pool, err := tx.Pools().FindByIDForUpdate(ctx, tx.DB(), poolID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrPoolNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := pool.SetTotalCapacity(total); err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := tx.Pools().Save(ctx, tx.DB(), pool); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		cfg, err := tx.Overbooking().FindByPoolID(ctx, tx.DB(), poolID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if cfg == nil {
			return nil
		}
		decision := overbooking.Reassess(pool, cfg)
		cfg.SetRiskLevel(decision.Level)
		if err := tx.Overbooking().SaveRiskLevel(ctx, tx.DB(), poolID, cfg.RiskLevel()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.invalidate(ctx, poolID)
	return nil
}

func (c *poolCommandsImpl) ConfigureOverbooking(ctx context.Context, params ConfigureOverbookingParams) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pool, err := tx.Pools().FindByIDForUpdate(ctx, tx.DB(), params.PoolID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrPoolNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		cfg, err := overbooking.NewConfig(params.PoolID, params.MaxPercent, overbooking.AutoActions{
			AlertAdmins:       params.AlertAdmins,
			NotifyUsers:       params.NotifyUsers,
			OfferAlternatives: params.OfferAlternatives,
		})
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if !params.Active {
			cfg.Deactivate()
		}

		// Risk reflects the live counters from the moment the config lands.
		decision := overbooking.Reassess(pool, cfg)
		cfg.SetRiskLevel(decision.Level)

		if err := tx.Overbooking().Upsert(ctx, tx.DB(), cfg); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.invalidate(ctx, params.PoolID)
	return nil
}

func (c *poolCommandsImpl) invalidate(ctx context.Context, poolID uuid.UUID) {
	if err := c.cache.Invalidate(ctx, poolID); err != nil {
		slog.Warn("availability cache invalidation failed", "pool_id", poolID, "error", err.Error())
	}
}
