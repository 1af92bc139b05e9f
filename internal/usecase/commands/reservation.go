package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/domain/overbooking"
	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/infra"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/pkg/clock"
	"event-capacity/internal/pkg/config"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/queries"
	"event-capacity/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateReservationParams struct {
	PoolID         uuid.UUID
	ParticipantID  uuid.UUID
	BasePriceCents int64
	// Draft skips capacity allocation; the hold starts on SubmitDraft.
	Draft bool
}

type CreateReservationResult struct {
	Reservation *queries.ReservationView
	IsReplayed  bool
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, params CreateReservationParams, idempotencyKey uuid.UUID) (*CreateReservationResult, error)
	SubmitDraft(ctx context.Context, id uuid.UUID) error
	HandlePaymentResult(ctx context.Context, id uuid.UUID, succeeded bool) error
	Approve(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Refund(ctx context.Context, id uuid.UUID) error
	Expire(ctx context.Context, id uuid.UUID) error
	CheckIn(ctx context.Context, id uuid.UUID) error
	CheckOut(ctx context.Context, id uuid.UUID) error
}

type reservationCommandsImpl struct {
	uow                shared.UnitOfWork
	idempotencyRepo    shared.IdempotencyRepository
	factory            *reservation.Factory
	reservationQueries queries.ReservationQueries
	cache              queries.AvailabilityCache
	clock              clock.Clock
	cfg                config.ReservationConfig
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	idempotencyRepo shared.IdempotencyRepository,
	factory *reservation.Factory,
	reservationQueries queries.ReservationQueries,
	cache queries.AvailabilityCache,
	clk clock.Clock,
	cfg config.ReservationConfig,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:                uow,
		idempotencyRepo:    idempotencyRepo,
		factory:            factory,
		reservationQueries: reservationQueries,
		cache:              cache,
		clock:              clk,
		cfg:                cfg,
	}
}

func (c *reservationCommandsImpl) CreateReservation(
	ctx context.Context,
	params CreateReservationParams,
	idempotencyKey uuid.UUID,
) (*CreateReservationResult, error) {
	requestHash := calculateRequestHash(params)
	expiresAt := c.clock.Now().Add(c.cfg.IdempotencyTTL)

	replayed, err := c.handleIdempotency(ctx, idempotencyKey, params.ParticipantID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return &CreateReservationResult{Reservation: replayed, IsReplayed: true}, nil
	}

	var res *reservation.Reservation
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pool, cfg, findErr := c.lockPool(ctx, tx, params.PoolID)
		if findErr != nil {
			return findErr
		}

		var buildErr error
		if params.Draft {
			res, buildErr = c.factory.NewDraft(pool.ID(), pool.ScopeID(), params.ParticipantID, params.BasePriceCents)
		} else {
			res, buildErr = c.factory.NewPendingPayment(pool.ID(), pool.ScopeID(), params.ParticipantID, params.BasePriceCents, c.cfg.HoldTTL)
		}
		if buildErr != nil {
			return errs.Mark(buildErr, errs.ErrDomainValidation)
		}

		if !params.Draft {
			if grantErr := c.grant(ctx, tx, pool, cfg, res); grantErr != nil {
				return grantErr
			}
		}

		if _, createErr := tx.Reservations().Create(ctx, tx.DB(), res); createErr != nil {
			return errs.Mark(createErr, errs.ErrDatabaseOperationFailed)
		}

		if jobErr := c.enqueueEvent(ctx, tx, "reservation_granted", res.ID(), pool.ID()); jobErr != nil {
			return jobErr
		}

		if idemErr := tx.Idempotency().MarkCompleted(ctx, tx.DB(), idempotencyKey, params.ParticipantID, res.ID()); idemErr != nil {
			return errs.Mark(idemErr, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.invalidateAvailability(ctx, params.PoolID)

	view, err := c.reservationQueries.GetByID(ctx, res.ID())
	if err != nil {
		return nil, err
	}
	return &CreateReservationResult{Reservation: view, IsReplayed: false}, nil
}

func (c *reservationCommandsImpl) SubmitDraft(ctx context.Context, id uuid.UUID) error {
	return c.transition(ctx, id, reservation.StatusPendingPayment, false)
}

func (c *reservationCommandsImpl) HandlePaymentResult(ctx context.Context, id uuid.UUID, succeeded bool) error {
	if succeeded {
		return c.transition(ctx, id, reservation.StatusPaid, false)
	}
	return c.transition(ctx, id, reservation.StatusCancelled, false)
}

func (c *reservationCommandsImpl) Approve(ctx context.Context, id uuid.UUID) error {
	return c.transition(ctx, id, reservation.StatusConfirmed, false)
}

func (c *reservationCommandsImpl) Cancel(ctx context.Context, id uuid.UUID) error {
	return c.transition(ctx, id, reservation.StatusCancelled, false)
}

func (c *reservationCommandsImpl) Refund(ctx context.Context, id uuid.UUID) error {
	return c.transition(ctx, id, reservation.StatusRefunded, false)
}

// Expire is system-only; the reaper drives it. ErrIllegalTransition here
// usually means the payment callback won the race, which callers treat as
// success.
func (c *reservationCommandsImpl) Expire(ctx context.Context, id uuid.UUID) error {
	return c.transition(ctx, id, reservation.StatusExpired, true)
}

// transition applies one legal edge and its paired pool mutation in a single
// unit of work: re-read under lock, validate, mutate pool, persist status,
// enqueue the domain event. The event delivery itself is asynchronous.
func (c *reservationCommandsImpl) transition(ctx context.Context, id uuid.UUID, target reservation.Status, system bool) error {
	now := c.clock.Now()
	var poolID uuid.UUID

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByIDForUpdate(ctx, tx.DB(), id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrReservationNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		expected := res.Status()
		poolID = res.PoolID()

		if target == reservation.StatusExpired && !res.HoldExpired(now) {
			return errs.Mark(
				errs.Newf("hold has not expired yet for reservation %s", id),
				errs.ErrIllegalTransition,
			)
		}

		tr, err := res.ApplyTransition(target, now, c.cfg.HoldTTL)
		if err != nil {
			return errs.Mark(err, errs.ErrIllegalTransition)
		}
		if tr.SystemOnly && !system {
			return errs.Mark(
				errs.Newf("transition %s -> %s is system-only", expected, target),
				errs.ErrIllegalTransition,
			)
		}

		pool, cfg, err := c.lockPool(ctx, tx, res.PoolID())
		if err != nil {
			return err
		}

		if tr.BeforeEventStart {
			if start := pool.EventStart(); start != nil && !now.Before(*start) {
				return errs.Mark(
					errs.Newf("event already started; %s -> %s is closed", expected, target),
					errs.ErrIllegalTransition,
				)
			}
		}

		if err := c.applyPoolEffect(ctx, tx, pool, cfg, res, tr.Effect); err != nil {
			return err
		}

		if err := tx.Reservations().UpdateStatus(ctx, tx.DB(), res, expected); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrConcurrencyConflict)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		return c.enqueueEvent(ctx, tx, topicFor(target), res.ID(), pool.ID())
	})
	if err != nil {
		return err
	}

	c.invalidateAvailability(ctx, poolID)
	return nil
}

// grant moves one unit from available to blocked, falling back to the
// overbooking margin when the pool is sold out. Risk level is recomputed and
// persisted on every admission; an upward crossing enqueues the admin alert
// exactly once.
func (c *reservationCommandsImpl) grant(
	ctx context.Context,
	tx shared.Tx,
	pool *capacity.Pool,
	cfg *overbooking.Config,
	res *reservation.Reservation,
) error {
	var decision overbooking.Decision

	err := pool.Reserve(1)
	switch {
	case err == nil:
		decision = overbooking.Reassess(pool, cfg)
	case errors.Is(err, capacity.ErrInsufficientCapacity):
		decision = overbooking.Admit(pool, cfg, 1)
		if !decision.Granted {
			return errs.Mark(
				errs.Newf("pool %s is sold out", pool.ID()),
				errs.ErrCapacityDenied,
			)
		}
		if err := pool.ReserveOverbooked(1); err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		res.MarkOverbooked()
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := tx.Pools().Save(ctx, tx.DB(), pool); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return c.persistRisk(ctx, tx, pool, cfg, decision)
}

func (c *reservationCommandsImpl) applyPoolEffect(
	ctx context.Context,
	tx shared.Tx,
	pool *capacity.Pool,
	cfg *overbooking.Config,
	res *reservation.Reservation,
	effect reservation.PoolEffect,
) error {
	var err error
	switch effect {
	case reservation.EffectNone:
		return nil
	case reservation.EffectReserve:
		return c.grant(ctx, tx, pool, cfg, res)
	case reservation.EffectConfirm:
		err = pool.Confirm(1)
	case reservation.EffectRelease:
		err = pool.Release(1)
	case reservation.EffectReleaseConfirmed:
		err = pool.ReleaseConfirmed(1)
	}
	if err != nil {
		// Never swallowed: this is a double-release or double-confirm bug
		// somewhere upstream.
		return errs.Mark(err, errs.ErrCapacityAccounting)
	}

	if err := tx.Pools().Save(ctx, tx.DB(), pool); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return c.persistRisk(ctx, tx, pool, cfg, overbooking.Reassess(pool, cfg))
}

func (c *reservationCommandsImpl) persistRisk(
	ctx context.Context,
	tx shared.Tx,
	pool *capacity.Pool,
	cfg *overbooking.Config,
	decision overbooking.Decision,
) error {
	if cfg == nil {
		return nil
	}
	escalated := cfg.SetRiskLevel(decision.Level)
	if err := tx.Overbooking().SaveRiskLevel(ctx, tx.DB(), pool.ID(), cfg.RiskLevel()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if escalated && cfg.AutoActions().AlertAdmins {
		payload, _ := json.Marshal(map[string]any{
			"pool_id":    pool.ID(),
			"risk_level": cfg.RiskLevel().String(),
			"priority":   alertPriority(cfg.RiskLevel()),
		})
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", "overbooking_risk_escalated", payload, c.clock.Now()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	return nil
}

// alertPriority flags the admission that reaches the configured ceiling; the
// grant is still honored, so the alert is the only signal that goes out.
func alertPriority(level overbooking.RiskLevel) string {
	if level == overbooking.RiskCritical {
		return "high"
	}
	return "normal"
}

func (c *reservationCommandsImpl) CheckIn(ctx context.Context, id uuid.UUID) error {
	return c.updateAttendance(ctx, id, (*reservation.Reservation).CheckIn)
}

func (c *reservationCommandsImpl) CheckOut(ctx context.Context, id uuid.UUID) error {
	return c.updateAttendance(ctx, id, (*reservation.Reservation).CheckOut)
}

func (c *reservationCommandsImpl) updateAttendance(ctx context.Context, id uuid.UUID, apply func(*reservation.Reservation) error) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Reservations().FindByIDForUpdate(ctx, tx.DB(), id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrReservationNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := apply(res); err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := tx.Reservations().UpdateAttendance(ctx, tx.DB(), res); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (c *reservationCommandsImpl) lockPool(ctx context.Context, tx shared.Tx, poolID uuid.UUID) (*capacity.Pool, *overbooking.Config, error) {
	pool, err := tx.Pools().FindByIDForUpdate(ctx, tx.DB(), poolID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, errs.Mark(err, errs.ErrPoolNotFound)
		}
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	cfg, err := tx.Overbooking().FindByPoolID(ctx, tx.DB(), poolID)
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return pool, cfg, nil
}

// handleIdempotency claims the key outside the main transaction so that
// concurrent duplicates observe the claim immediately. A replayed view is
// returned for an already completed key; a processing twin with the same
// payload is reported as in progress, with a different payload as duplicate.
func (c *reservationCommandsImpl) handleIdempotency(
	ctx context.Context,
	key, participantID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*queries.ReservationView, error) {
	var replay *queries.ReservationView

	err := c.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		claimed, err := c.idempotencyRepo.TryInsert(ctx, dbtx, key, participantID, "POST /reservations", requestHash, expiresAt)
		if err != nil {
			return errs.Mark(err, errs.ErrIdempotencyCheckFailed)
		}
		if claimed {
			return nil
		}

		existing, err := c.idempotencyRepo.Get(ctx, dbtx, key, participantID)
		if err != nil {
			return errs.Mark(err, errs.ErrIdempotencyCheckFailed)
		}

		switch existing.Status {
		case "completed":
			if existing.RequestHash != requestHash {
				return errs.ErrDuplicateRequest
			}
			if existing.ResultReservationID == nil {
				return errs.New("completed request missing result reservation ID")
			}
			replay, err = c.reservationQueries.GetByID(ctx, *existing.ResultReservationID)
			return err

		case "processing":
			if existing.RequestHash != requestHash {
				return errs.ErrDuplicateRequest
			}
			return errs.ErrIdempotencyInProgress

		default:
			return errs.New("invalid idempotency key status")
		}
	})
	if err != nil {
		return nil, err
	}
	return replay, nil
}

func (c *reservationCommandsImpl) enqueueEvent(ctx context.Context, tx shared.Tx, topic string, reservationID, poolID uuid.UUID) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": reservationID,
		"pool_id":        poolID,
		"occurred_at":    c.clock.Now(),
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", topic, payload, c.clock.Now()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func (c *reservationCommandsImpl) invalidateAvailability(ctx context.Context, poolID uuid.UUID) {
	if poolID == uuid.Nil {
		return
	}
	if err := c.cache.Invalidate(ctx, poolID); err != nil {
		slog.Warn("availability cache invalidation failed", "pool_id", poolID, "error", err.Error())
	}
}

func topicFor(target reservation.Status) string {
	switch target {
	case reservation.StatusPendingPayment:
		return "reservation_granted"
	case reservation.StatusPaid:
		return "reservation_paid"
	case reservation.StatusConfirmed:
		return "reservation_confirmed"
	case reservation.StatusCancelled:
		return "reservation_cancelled"
	case reservation.StatusExpired:
		return "reservation_expired"
	case reservation.StatusRefunded:
		return "reservation_refunded"
	default:
		return "reservation_updated"
	}
}

func calculateRequestHash(params CreateReservationParams) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
