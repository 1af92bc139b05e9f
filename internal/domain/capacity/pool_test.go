//go:build unit

package capacity_test

import (
	"testing"

	"event-capacity/internal/domain/capacity"
	"event-capacity/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		total := int32(50)
		pool, err := capacity.NewPool(uuid.New(), capacity.ScopeEvent, &total, nil)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, pool.ID())
		assert.Equal(t, int32(50), pool.Available())
		assert.Equal(t, int32(0), pool.Blocked())
		assert.Equal(t, int32(0), pool.Confirmed())
		assert.False(t, pool.IsUnlimited())
	})

	t.Run("unlimited pool starts with zero counters", func(t *testing.T) {
		pool, err := capacity.NewPool(uuid.New(), capacity.ScopeSession, nil, nil)
		require.NoError(t, err)

		assert.True(t, pool.IsUnlimited())
		assert.Equal(t, int32(0), pool.Available())
	})

	t.Run("negative capacity rejected", func(t *testing.T) {
		total := int32(-1)
		_, err := capacity.NewPool(uuid.New(), capacity.ScopeEvent, &total, nil)
		assert.ErrorIs(t, err, capacity.ErrInvalidCapacity)
	})

	t.Run("invalid scope type rejected", func(t *testing.T) {
		total := int32(10)
		_, err := capacity.NewPool(uuid.New(), capacity.ScopeType("venue"), &total, nil)
		assert.Error(t, err)
	})
}

func TestPoolReserve(t *testing.T) {
	t.Run("reserve moves available to blocked", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 10, 0, 0).BuildDomain()

		require.NoError(t, pool.Reserve(1))

		assert.Equal(t, int32(9), pool.Available())
		assert.Equal(t, int32(1), pool.Blocked())
	})

	t.Run("reserve fails when sold out", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 5, 5).BuildDomain()

		err := pool.Reserve(1)
		assert.ErrorIs(t, err, capacity.ErrInsufficientCapacity)
		assert.Equal(t, int32(5), pool.Blocked())
	})

	t.Run("zero and negative quantities rejected", func(t *testing.T) {
		pool := builder.NewPoolBuilder().BuildDomain()

		assert.ErrorIs(t, pool.Reserve(0), capacity.ErrInvalidQuantity)
		assert.ErrorIs(t, pool.Reserve(-1), capacity.ErrInvalidQuantity)
	})

	t.Run("unlimited pool always grants", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithUnlimited().BuildDomain()

		for range 1000 {
			require.NoError(t, pool.Reserve(1))
		}
		assert.Equal(t, int32(1000), pool.Blocked())
	})

	t.Run("overbooked reserve only grows blocked", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 10, 0).BuildDomain()

		require.NoError(t, pool.ReserveOverbooked(1))

		assert.Equal(t, int32(0), pool.Available())
		assert.Equal(t, int32(11), pool.Blocked())
	})
}

func TestPoolConfirmAndRelease(t *testing.T) {
	t.Run("full lifecycle round trip", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 10, 0, 0).BuildDomain()

		require.NoError(t, pool.Reserve(1))
		require.NoError(t, pool.Confirm(1))
		assert.Equal(t, int32(0), pool.Blocked())
		assert.Equal(t, int32(1), pool.Confirmed())

		require.NoError(t, pool.ReleaseConfirmed(1))
		assert.Equal(t, int32(10), pool.Available())
		assert.Equal(t, int32(0), pool.Confirmed())
	})

	t.Run("release returns blocked unit to available", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 9, 1, 0).BuildDomain()

		require.NoError(t, pool.Release(1))

		assert.Equal(t, int32(10), pool.Available())
		assert.Equal(t, int32(0), pool.Blocked())
	})

	t.Run("confirm without blocked unit is an accounting failure", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 10, 0, 0).BuildDomain()

		assert.ErrorIs(t, pool.Confirm(1), capacity.ErrAccountingViolation)
	})

	t.Run("release without blocked unit is an accounting failure", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 10, 0, 0).BuildDomain()

		assert.ErrorIs(t, pool.Release(1), capacity.ErrAccountingViolation)
	})

	t.Run("release of an overbooked unit does not inflate available", func(t *testing.T) {
		// 10 seats, 10 confirmed, 2 overbooked holds. Releasing a hold must
		// not create phantom availability above the nominal total.
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 2, 10).BuildDomain()

		require.NoError(t, pool.Release(1))
		assert.Equal(t, int32(0), pool.Available())
		assert.Equal(t, int32(1), pool.Blocked())

		require.NoError(t, pool.Release(1))
		assert.Equal(t, int32(0), pool.Available())
		assert.Equal(t, int32(0), pool.Blocked())
	})

	t.Run("confirmed release caps available at headroom", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 1, 10).BuildDomain()

		require.NoError(t, pool.ReleaseConfirmed(1))
		assert.Equal(t, int32(0), pool.Available())
		assert.Equal(t, int32(9), pool.Confirmed())
	})
}

func TestPoolSetTotalCapacity(t *testing.T) {
	t.Run("grow adds headroom to available", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 2, 3, 5).BuildDomain()

		total := int32(20)
		require.NoError(t, pool.SetTotalCapacity(&total))
		assert.Equal(t, int32(12), pool.Available())
	})

	t.Run("shrink below committed leaves zero available", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 2, 3, 5).BuildDomain()

		total := int32(4)
		require.NoError(t, pool.SetTotalCapacity(&total))
		assert.Equal(t, int32(0), pool.Available())
		// Committed holds survive the shrink untouched.
		assert.Equal(t, int32(3), pool.Blocked())
		assert.Equal(t, int32(5), pool.Confirmed())
	})

	t.Run("switch to unlimited", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 2, 3, 5).BuildDomain()

		require.NoError(t, pool.SetTotalCapacity(nil))
		assert.True(t, pool.IsUnlimited())
	})

	t.Run("negative total rejected", func(t *testing.T) {
		pool := builder.NewPoolBuilder().BuildDomain()

		total := int32(-5)
		assert.ErrorIs(t, pool.SetTotalCapacity(&total), capacity.ErrInvalidCapacity)
	})
}

func TestPoolCheckInvariant(t *testing.T) {
	t.Run("balanced pool passes", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 4, 3, 3).BuildDomain()
		assert.NoError(t, pool.CheckInvariant(0))
	})

	t.Run("overbooked pool passes within margin", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 2, 10).BuildDomain()
		assert.NoError(t, pool.CheckInvariant(2))
	})

	t.Run("commitments beyond margin fail", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 3, 10).BuildDomain()
		assert.ErrorIs(t, pool.CheckInvariant(2), capacity.ErrAccountingViolation)
	})
}
