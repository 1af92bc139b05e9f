//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"event-capacity/internal/domain/reservation"
	"event-capacity/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holdTTL = 15 * time.Minute

func TestTransitionTable(t *testing.T) {
	legal := map[reservation.Status][]reservation.Status{
		reservation.StatusDraft:          {reservation.StatusPendingPayment},
		reservation.StatusPendingPayment: {reservation.StatusPaid, reservation.StatusConfirmed, reservation.StatusCancelled, reservation.StatusExpired},
		reservation.StatusPaid:           {reservation.StatusConfirmed, reservation.StatusCancelled, reservation.StatusRefunded},
		reservation.StatusConfirmed:      {reservation.StatusRefunded, reservation.StatusCancelled},
		reservation.StatusCancelled:      nil,
		reservation.StatusExpired:        nil,
		reservation.StatusRefunded:       nil,
	}
	all := []reservation.Status{
		reservation.StatusDraft,
		reservation.StatusPendingPayment,
		reservation.StatusPaid,
		reservation.StatusConfirmed,
		reservation.StatusCancelled,
		reservation.StatusExpired,
		reservation.StatusRefunded,
	}

	for from, targets := range legal {
		assert.ElementsMatch(t, targets, reservation.Targets(from), "targets from %s", from)
	}

	// Every edge outside the table must be rejected.
	for _, from := range all {
		allowed := map[reservation.Status]bool{}
		for _, to := range legal[from] {
			allowed[to] = true
		}
		for _, to := range all {
			_, ok := reservation.TransitionFor(from, to)
			assert.Equal(t, allowed[to], ok, "transition %s -> %s", from, to)
		}
	}
}

func TestTransitionEffects(t *testing.T) {
	cases := []struct {
		from, to reservation.Status
		effect   reservation.PoolEffect
	}{
		{reservation.StatusDraft, reservation.StatusPendingPayment, reservation.EffectReserve},
		{reservation.StatusPendingPayment, reservation.StatusPaid, reservation.EffectNone},
		{reservation.StatusPendingPayment, reservation.StatusConfirmed, reservation.EffectConfirm},
		{reservation.StatusPendingPayment, reservation.StatusCancelled, reservation.EffectRelease},
		{reservation.StatusPendingPayment, reservation.StatusExpired, reservation.EffectRelease},
		{reservation.StatusPaid, reservation.StatusConfirmed, reservation.EffectConfirm},
		{reservation.StatusPaid, reservation.StatusCancelled, reservation.EffectRelease},
		{reservation.StatusPaid, reservation.StatusRefunded, reservation.EffectNone},
		{reservation.StatusConfirmed, reservation.StatusRefunded, reservation.EffectNone},
		{reservation.StatusConfirmed, reservation.StatusCancelled, reservation.EffectReleaseConfirmed},
	}
	for _, tc := range cases {
		tr, ok := reservation.TransitionFor(tc.from, tc.to)
		require.True(t, ok, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.effect, tr.Effect, "%s -> %s", tc.from, tc.to)
	}

	expire, _ := reservation.TransitionFor(reservation.StatusPendingPayment, reservation.StatusExpired)
	assert.True(t, expire.SystemOnly)

	cancelConfirmed, _ := reservation.TransitionFor(reservation.StatusConfirmed, reservation.StatusCancelled)
	assert.True(t, cancelConfirmed.BeforeEventStart)
}

func TestApplyTransition(t *testing.T) {
	now := time.Now()

	t.Run("hold expiry set iff pending payment", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithStatus(reservation.StatusDraft).BuildDomain()

		_, err := res.ApplyTransition(reservation.StatusPendingPayment, now, holdTTL)
		require.NoError(t, err)
		require.NotNil(t, res.HoldExpiresAt())
		assert.Equal(t, now.Add(holdTTL), *res.HoldExpiresAt())

		_, err = res.ApplyTransition(reservation.StatusPaid, now, holdTTL)
		require.NoError(t, err)
		assert.Nil(t, res.HoldExpiresAt())
	})

	t.Run("illegal transition reports the edge", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithStatus(reservation.StatusCancelled).BuildDomain()

		_, err := res.ApplyTransition(reservation.StatusPaid, now, holdTTL)
		var illegal *reservation.IllegalTransitionError
		require.ErrorAs(t, err, &illegal)
		assert.Equal(t, reservation.StatusCancelled, illegal.From)
		assert.Equal(t, reservation.StatusPaid, illegal.To)
	})

	t.Run("terminal statuses allow nothing", func(t *testing.T) {
		for _, from := range []reservation.Status{
			reservation.StatusCancelled, reservation.StatusExpired, reservation.StatusRefunded,
		} {
			assert.True(t, from.IsTerminal())
			assert.Empty(t, reservation.Targets(from))
		}
	})
}

func TestHoldExpired(t *testing.T) {
	now := time.Now()

	t.Run("expired hold", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithHoldExpiry(now.Add(-time.Minute)).BuildDomain()
		assert.True(t, res.HoldExpired(now))
	})

	t.Run("live hold", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithHoldExpiry(now.Add(time.Minute)).BuildDomain()
		assert.False(t, res.HoldExpired(now))
	})

	t.Run("only pending payment holds expire", func(t *testing.T) {
		res := builder.NewReservationBuilder().
			WithStatus(reservation.StatusPaid).
			BuildDomain()
		assert.False(t, res.HoldExpired(now))
	})
}

func TestAttendance(t *testing.T) {
	t.Run("check-in requires confirmed", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithStatus(reservation.StatusPaid).BuildDomain()
		assert.ErrorIs(t, res.CheckIn(), reservation.ErrNotConfirmed)
	})

	t.Run("check-out requires prior check-in", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithStatus(reservation.StatusConfirmed).BuildDomain()
		assert.ErrorIs(t, res.CheckOut(), reservation.ErrNotCheckedIn)

		require.NoError(t, res.CheckIn())
		require.NoError(t, res.CheckOut())
		assert.Equal(t, reservation.AttendanceCheckedOut, res.Attendance())
	})
}

func TestFinalPrice(t *testing.T) {
	res := builder.NewReservationBuilder().
		With(func(b *builder.ReservationBuilder) {
			b.BasePriceCents = 5000
			b.DiscountCents = 1500
		}).
		BuildDomain()
	assert.Equal(t, int64(3500), res.FinalPriceCents())

	overDiscounted := builder.NewReservationBuilder().
		With(func(b *builder.ReservationBuilder) {
			b.BasePriceCents = 1000
			b.DiscountCents = 2500
		}).
		BuildDomain()
	assert.Equal(t, int64(0), overDiscounted.FinalPriceCents())
}
