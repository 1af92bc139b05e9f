package queries

import (
	"time"

	"github.com/google/uuid"
)

type ReservationView struct {
	ID              uuid.UUID  `json:"id"`
	PoolID          uuid.UUID  `json:"poolId"`
	ScopeID         uuid.UUID  `json:"scopeId"`
	ScopeType       string     `json:"scopeType"`
	ParticipantID   uuid.UUID  `json:"participantId"`
	Status          string     `json:"status"`
	Attendance      string     `json:"attendance"`
	HoldExpiresAt   *time.Time `json:"holdExpiresAt,omitempty"`
	BasePriceCents  int64      `json:"basePriceCents"`
	DiscountCents   int64      `json:"discountCents"`
	FinalPriceCents int64      `json:"finalPriceCents"`
	Overbooked      bool       `json:"overbooked"`
	CreatedAt       time.Time  `json:"createdAt"`
	StatusChangedAt time.Time  `json:"statusChangedAt"`
}

// PoolAvailabilityView is the display snapshot derived from the capacity
// pool, never from parallel counters.
type PoolAvailabilityView struct {
	PoolID            uuid.UUID `json:"poolId"`
	ScopeID           uuid.UUID `json:"scopeId"`
	ScopeType         string    `json:"scopeType"`
	TotalCapacity     *int32    `json:"totalCapacity,omitempty"`
	Available         int32     `json:"available"`
	Blocked           int32     `json:"blocked"`
	Confirmed         int32     `json:"confirmed"`
	OverbookPercent   float64   `json:"overbookPercent"`
	RiskLevel         string    `json:"riskLevel"`
	OverbookingActive bool      `json:"overbookingActive"`
}
