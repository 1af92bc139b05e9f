package request

import (
	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	PoolID         uuid.UUID `json:"pool_id" binding:"required"`
	ParticipantID  uuid.UUID `json:"participant_id" binding:"required"`
	BasePriceCents int64     `json:"base_price_cents" binding:"min=0"`
	// Draft creates the reservation without taking capacity; the hold starts
	// when the draft is submitted.
	Draft bool `json:"draft"`
}

type PaymentResultRequest struct {
	Succeeded *bool `json:"succeeded" binding:"required"`
}
