//go:build unit

package overbooking_test

import (
	"testing"

	"event-capacity/internal/domain/overbooking"
	"event-capacity/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	// maxPercent 20 means: <10% low, 10-15% medium, 16-19% high, >=20% critical
	cases := []struct {
		name     string
		current  float64
		max      int32
		expected overbooking.RiskLevel
	}{
		{"no overbooking", 0, 20, overbooking.RiskLow},
		{"below half of ceiling", 9.9, 20, overbooking.RiskLow},
		{"at half of ceiling", 10, 20, overbooking.RiskMedium},
		{"just below high band", 15.9, 20, overbooking.RiskMedium},
		{"at high band", 16, 20, overbooking.RiskHigh},
		{"just below ceiling", 19.9, 20, overbooking.RiskHigh},
		{"at ceiling", 20, 20, overbooking.RiskCritical},
		{"past ceiling", 25, 20, overbooking.RiskCritical},
		{"zero ceiling with no overbooking", 0, 0, overbooking.RiskLow},
		{"zero ceiling with overbooking", 1, 0, overbooking.RiskCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, overbooking.BucketFor(tc.current, tc.max))
		})
	}
}

func TestCurrentPercent(t *testing.T) {
	assert.Equal(t, float64(0), overbooking.CurrentPercent(100, 80))
	assert.Equal(t, float64(0), overbooking.CurrentPercent(100, 100))
	assert.Equal(t, float64(5), overbooking.CurrentPercent(100, 105))
	assert.Equal(t, float64(0), overbooking.CurrentPercent(0, 10))
}

func TestAdmit(t *testing.T) {
	t.Run("no config denies", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 10, 0).BuildDomain()

		decision := overbooking.Admit(pool, nil, 1)
		assert.False(t, decision.Granted)
	})

	t.Run("inactive config denies", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 10, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).
			With(func(b *builder.OverbookingConfigBuilder) { b.IsActive = false }).
			BuildDomain()

		decision := overbooking.Admit(pool, cfg, 1)
		assert.False(t, decision.Granted)
	})

	t.Run("grants within margin", func(t *testing.T) {
		// 100 seats, 10% margin, 100 committed: 10 extra units available
		pool := builder.NewPoolBuilder().WithCapacity(100, 0, 100, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).BuildDomain()

		decision := overbooking.Admit(pool, cfg, 1)
		assert.True(t, decision.Granted)
		assert.True(t, decision.Overbooked)
	})

	t.Run("critical pool denies further admissions", func(t *testing.T) {
		// 100 seats, 10% margin, 110 committed: already at the ceiling
		pool := builder.NewPoolBuilder().WithCapacity(100, 0, 110, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).BuildDomain()

		decision := overbooking.Admit(pool, cfg, 1)
		assert.False(t, decision.Granted)
		assert.Equal(t, overbooking.RiskCritical, decision.Level)
	})

	t.Run("the crossing admission is honored", func(t *testing.T) {
		// 109 committed out of 110 authorized: this grant fills the margin
		// and lands the pool on CRITICAL, but it is still granted.
		pool := builder.NewPoolBuilder().WithCapacity(100, 0, 109, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).
			With(func(b *builder.OverbookingConfigBuilder) { b.RiskLevel = overbooking.RiskHigh }).
			BuildDomain()

		decision := overbooking.Admit(pool, cfg, 1)
		assert.True(t, decision.Granted)
		assert.Equal(t, overbooking.RiskCritical, decision.Level)
		assert.True(t, decision.Escalated)
	})

	t.Run("margin exhausted denies", func(t *testing.T) {
		// Margin is 10 but asking for 2 with only 1 left
		pool := builder.NewPoolBuilder().WithCapacity(100, 0, 109, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).BuildDomain()

		decision := overbooking.Admit(pool, cfg, 2)
		assert.False(t, decision.Granted)
	})
}

func TestEscalationFiresOncePerCrossing(t *testing.T) {
	pool := builder.NewPoolBuilder().WithCapacity(100, 0, 104, 0).BuildDomain()
	cfg := builder.NewOverbookingConfigBuilder(pool.ID()).BuildDomain()

	// 104 -> 105 committed crosses into MEDIUM (5% of a 10% ceiling)
	first := overbooking.Admit(pool, cfg, 1)
	require.True(t, first.Granted)
	assert.True(t, cfg.SetRiskLevel(first.Level), "first crossing escalates")
	require.NoError(t, pool.ReserveOverbooked(1))

	// 105 -> 106 stays MEDIUM; no second alert
	second := overbooking.Admit(pool, cfg, 1)
	require.True(t, second.Granted)
	assert.False(t, cfg.SetRiskLevel(second.Level))
}

func TestReassess(t *testing.T) {
	t.Run("deescalation is persisted but not reported", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(100, 0, 100, 0).BuildDomain()
		cfg := builder.NewOverbookingConfigBuilder(pool.ID()).
			With(func(b *builder.OverbookingConfigBuilder) { b.RiskLevel = overbooking.RiskHigh }).
			BuildDomain()

		decision := overbooking.Reassess(pool, cfg)
		assert.Equal(t, overbooking.RiskLow, decision.Level)
		assert.False(t, decision.Escalated)

		assert.False(t, cfg.SetRiskLevel(decision.Level))
		assert.Equal(t, overbooking.RiskLow, cfg.RiskLevel())
	})

	t.Run("nil config is always low", func(t *testing.T) {
		pool := builder.NewPoolBuilder().WithCapacity(10, 0, 15, 0).BuildDomain()
		decision := overbooking.Reassess(pool, nil)
		assert.Equal(t, overbooking.RiskLow, decision.Level)
	})
}
