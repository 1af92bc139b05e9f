package response

import (
	"time"

	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
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

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:              rm.ID,
		PoolID:          rm.PoolID,
		ScopeID:         rm.ScopeID,
		ScopeType:       rm.ScopeType,
		ParticipantID:   rm.ParticipantID,
		Status:          rm.Status,
		Attendance:      rm.Attendance,
		HoldExpiresAt:   rm.HoldExpiresAt,
		BasePriceCents:  rm.BasePriceCents,
		DiscountCents:   rm.DiscountCents,
		FinalPriceCents: rm.FinalPriceCents,
		Overbooked:      rm.Overbooked,
		CreatedAt:       rm.CreatedAt,
		StatusChangedAt: rm.StatusChangedAt,
	}
}
