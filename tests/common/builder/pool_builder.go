//go:build unit || e2e

package builder

import (
	"time"

	"event-capacity/internal/domain/capacity"
	"event-capacity/internal/domain/overbooking"

	"github.com/google/uuid"
)

type PoolBuilder struct {
	ID         uuid.UUID
	ScopeID    uuid.UUID
	ScopeType  capacity.ScopeType
	Total      *int32
	Available  int32
	Blocked    int32
	Confirmed  int32
	EventStart *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewPoolBuilder() *PoolBuilder {
	now := time.Now()
	total := int32(100)
	return &PoolBuilder{
		ID:        uuid.New(),
		ScopeID:   uuid.New(),
		ScopeType: capacity.ScopeEvent,
		Total:     &total,
		Available: 100,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *PoolBuilder) With(mutate func(*PoolBuilder)) *PoolBuilder {
	mutate(b)
	return b
}

func (b *PoolBuilder) WithCapacity(total, available, blocked, confirmed int32) *PoolBuilder {
	b.Total = &total
	b.Available = available
	b.Blocked = blocked
	b.Confirmed = confirmed
	return b
}

func (b *PoolBuilder) WithUnlimited() *PoolBuilder {
	b.Total = nil
	b.Available = 0
	return b
}

func (b *PoolBuilder) WithEventStart(t time.Time) *PoolBuilder {
	b.EventStart = &t
	return b
}

func (b *PoolBuilder) BuildDomain() *capacity.Pool {
	return capacity.ReconstructPool(
		b.ID, b.ScopeID, b.ScopeType,
		b.Total, b.Available, b.Blocked, b.Confirmed,
		b.EventStart, b.CreatedAt, b.UpdatedAt,
	)
}

type OverbookingConfigBuilder struct {
	PoolID      uuid.UUID
	MaxPercent  int32
	RiskLevel   overbooking.RiskLevel
	IsActive    bool
	AutoActions overbooking.AutoActions
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewOverbookingConfigBuilder(poolID uuid.UUID) *OverbookingConfigBuilder {
	now := time.Now()
	return &OverbookingConfigBuilder{
		PoolID:     poolID,
		MaxPercent: 10,
		RiskLevel:  overbooking.RiskLow,
		IsActive:   true,
		AutoActions: overbooking.AutoActions{
			AlertAdmins: true,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *OverbookingConfigBuilder) With(mutate func(*OverbookingConfigBuilder)) *OverbookingConfigBuilder {
	mutate(b)
	return b
}

func (b *OverbookingConfigBuilder) BuildDomain() *overbooking.Config {
	return overbooking.ReconstructConfig(
		b.PoolID, b.MaxPercent, b.RiskLevel, b.IsActive, b.AutoActions,
		b.CreatedAt, b.UpdatedAt,
	)
}
