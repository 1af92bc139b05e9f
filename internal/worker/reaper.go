package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"event-capacity/internal/infra/db"
	"event-capacity/internal/pkg/clock"
	"event-capacity/internal/pkg/config"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/shared"

	"github.com/google/uuid"
)

// Reaper expires payment holds whose deadline has passed. Candidate IDs are
// collected without locks and each one is re-validated inside the expire
// transaction, so a hold that gets paid between the scan and the expire is
// left alone.
type Reaper struct {
	uow          shared.UnitOfWork
	reservations shared.ReservationRepository
	commands     commands.ReservationCommands
	clock        clock.Clock
	cfg          config.ReaperConfig
	logger       *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(
	uow shared.UnitOfWork,
	reservations shared.ReservationRepository,
	cmds commands.ReservationCommands,
	clk clock.Clock,
	cfg config.ReaperConfig,
	logger *slog.Logger,
) *Reaper {
	return &Reaper{
		uow:          uow,
		reservations: reservations,
		commands:     cmds,
		clock:        clk,
		cfg:          cfg,
		logger:       logger,
	}
}

func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
}

func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("expiry reaper started", "interval", r.cfg.Interval, "batch_size", r.cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("expiry reaper stopped")
			return
		case <-ticker.C:
			if expired, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("reaper sweep failed", "error", err.Error())
			} else if expired > 0 {
				r.logger.Info("expired stale payment holds", "count", expired)
			}
		}
	}
}

// RunOnce sweeps one batch and reports how many holds it actually expired.
func (r *Reaper) RunOnce(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := r.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		var findErr error
		ids, findErr = r.reservations.FindExpiredPendingIDs(ctx, dbtx, r.clock.Now(), r.cfg.BatchSize)
		return findErr
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		switch err := r.commands.Expire(ctx, id); {
		case err == nil:
			expired++
		case errors.Is(err, errs.ErrIllegalTransition),
			errors.Is(err, errs.ErrReservationNotFound),
			errors.Is(err, errs.ErrConcurrencyConflict):
			// Lost the race to a payment callback or a concurrent sweep.
		default:
			r.logger.Error("failed to expire reservation", "reservation_id", id, "error", err.Error())
		}
	}
	return expired, nil
}
