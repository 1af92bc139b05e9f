//go:build unit

package worker_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"event-capacity/internal/domain/reservation"
	"event-capacity/internal/infra/db"
	"event-capacity/internal/pkg/clock"
	"event-capacity/internal/pkg/config"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/shared"
	"event-capacity/internal/worker"
	"event-capacity/tests/common/builder"
	"event-capacity/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reaperFixture struct {
	store    *fake.Store
	clock    *clock.MockClock
	commands commands.ReservationCommands
	reaper   *worker.Reaper
}

// staleScanRepo serves a fixed candidate list, standing in for a scan whose
// results went stale before the expire ran.
type staleScanRepo struct {
	shared.ReservationRepository
	ids []uuid.UUID
}

func (r staleScanRepo) FindExpiredPendingIDs(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]uuid.UUID, error) {
	return r.ids, nil
}

func newReaperFixture(t *testing.T) *reaperFixture {
	t.Helper()

	store := fake.NewStore()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cmds := commands.NewReservationCommands(
		store.UoW(),
		store.IdempotencyRepo(),
		reservation.NewFactory(clk, reservation.NoDiscount{}),
		store.Queries(),
		store.Cache(),
		clk,
		config.ReservationConfig{HoldTTL: 15 * time.Minute, IdempotencyTTL: 24 * time.Hour},
	)
	reaper := worker.NewReaper(
		store.UoW(),
		store.ReservationRepo(),
		cmds,
		clk,
		config.ReaperConfig{Interval: time.Minute, BatchSize: 100},
		slog.New(slog.DiscardHandler),
	)
	return &reaperFixture{store: store, clock: clk, commands: cmds, reaper: reaper}
}

func (f *reaperFixture) seedPending(t *testing.T, holdExpiry time.Time) uuid.UUID {
	t.Helper()
	pool := builder.NewPoolBuilder().WithCapacity(10, 9, 1, 0).BuildDomain()
	f.store.AddPool(pool)
	res := builder.NewReservationBuilder().
		With(func(b *builder.ReservationBuilder) { b.PoolID = pool.ID() }).
		WithHoldExpiry(holdExpiry).
		BuildDomain()
	f.store.AddReservation(res)
	return res.ID()
}

func TestReaperRunOnce(t *testing.T) {
	t.Run("expires only overdue holds", func(t *testing.T) {
		f := newReaperFixture(t)
		overdue := f.seedPending(t, f.clock.Now().Add(-time.Minute))
		live := f.seedPending(t, f.clock.Now().Add(10*time.Minute))

		expired, err := f.reaper.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		assert.Equal(t, reservation.StatusExpired, f.store.Reservation(overdue).Status())
		assert.Equal(t, reservation.StatusPendingPayment, f.store.Reservation(live).Status())
	})

	t.Run("hold becomes due after the clock advances", func(t *testing.T) {
		f := newReaperFixture(t)
		id := f.seedPending(t, f.clock.Now().Add(10*time.Minute))

		expired, err := f.reaper.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		f.clock.Add(11 * time.Minute)

		expired, err = f.reaper.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, reservation.StatusExpired, f.store.Reservation(id).Status())
	})

	t.Run("tolerates a reservation that transitioned between scan and expire", func(t *testing.T) {
		f := newReaperFixture(t)
		overdue := f.seedPending(t, f.clock.Now().Add(-time.Minute))
		paidID := f.seedPending(t, f.clock.Now().Add(-time.Minute))

		// The payment callback won the race for the second hold after the
		// scan; the stale candidate list still names it.
		paid := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) {
				b.ID = paidID
				b.PoolID = f.store.Reservation(paidID).PoolID()
			}).
			WithStatus(reservation.StatusPaid).
			BuildDomain()
		f.store.AddReservation(paid)

		reaper := worker.NewReaper(
			f.store.UoW(),
			staleScanRepo{
				ReservationRepository: f.store.ReservationRepo(),
				ids:                   []uuid.UUID{overdue, paidID},
			},
			f.commands,
			f.clock,
			config.ReaperConfig{Interval: time.Minute, BatchSize: 100},
			slog.New(slog.DiscardHandler),
		)

		expired, err := reaper.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, reservation.StatusExpired, f.store.Reservation(overdue).Status())
		assert.Equal(t, reservation.StatusPaid, f.store.Reservation(paidID).Status())
	})

	t.Run("empty sweep", func(t *testing.T) {
		f := newReaperFixture(t)
		expired, err := f.reaper.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, expired)
	})
}

func TestReaperStartStop(t *testing.T) {
	f := newReaperFixture(t)
	f.reaper.Start()
	f.reaper.Stop()
}
