package overbooking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPercentage = errors.New("max overbook percentage must be between 0 and 100")

// AutoActions are no-op hooks delegated to external collaborators; the core
// only records which ones an organizer enabled.
type AutoActions struct {
	AlertAdmins       bool
	NotifyUsers       bool
	OfferAlternatives bool
}

// Config authorizes selling past nominal capacity for one pool, bounded by a
// percentage of total capacity.
type Config struct {
	poolID      uuid.UUID
	maxPercent  int32
	riskLevel   RiskLevel
	isActive    bool
	autoActions AutoActions
	createdAt   time.Time
	updatedAt   time.Time
}

func NewConfig(poolID uuid.UUID, maxPercent int32, autoActions AutoActions) (*Config, error) {
	if maxPercent < 0 || maxPercent > 100 {
		return nil, ErrInvalidPercentage
	}
	return &Config{
		poolID:      poolID,
		maxPercent:  maxPercent,
		riskLevel:   RiskLow,
		isActive:    true,
		autoActions: autoActions,
	}, nil
}

func ReconstructConfig(
	poolID uuid.UUID,
	maxPercent int32,
	riskLevel RiskLevel,
	isActive bool,
	autoActions AutoActions,
	createdAt, updatedAt time.Time,
) *Config {
	return &Config{
		poolID:      poolID,
		maxPercent:  maxPercent,
		riskLevel:   riskLevel,
		isActive:    isActive,
		autoActions: autoActions,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (c *Config) PoolID() uuid.UUID        { return c.poolID }
func (c *Config) MaxPercent() int32        { return c.maxPercent }
func (c *Config) RiskLevel() RiskLevel     { return c.riskLevel }
func (c *Config) IsActive() bool           { return c.isActive }
func (c *Config) AutoActions() AutoActions { return c.autoActions }
func (c *Config) CreatedAt() time.Time     { return c.createdAt }
func (c *Config) UpdatedAt() time.Time     { return c.updatedAt }

func (c *Config) Deactivate() { c.isActive = false }
func (c *Config) Activate()   { c.isActive = true }

func (c *Config) SetMaxPercent(maxPercent int32) error {
	if maxPercent < 0 || maxPercent > 100 {
		return ErrInvalidPercentage
	}
	c.maxPercent = maxPercent
	return nil
}

// Margin is the number of extra seats the organizer authorized past total.
func (c *Config) Margin(total int32) int32 {
	if !c.isActive {
		return 0
	}
	return total * c.maxPercent / 100
}

// SetRiskLevel records the freshly computed level and reports whether it
// escalated. De-escalation is persisted but never reported; alert hooks fire
// on upward crossings only.
func (c *Config) SetRiskLevel(level RiskLevel) (escalated bool) {
	escalated = level.Above(c.riskLevel)
	c.riskLevel = level
	return escalated
}
