package request

import (
	"time"

	"github.com/google/uuid"
)

type CreatePoolRequest struct {
	ScopeID   uuid.UUID `json:"scope_id" binding:"required"`
	ScopeType string    `json:"scope_type" binding:"required,oneof=event session"`
	// TotalCapacity nil means unlimited.
	TotalCapacity *int32     `json:"total_capacity,omitempty"`
	EventStart    *time.Time `json:"event_start,omitempty"`
}

type SetCapacityRequest struct {
	TotalCapacity *int32 `json:"total_capacity,omitempty"`
}

type ConfigureOverbookingRequest struct {
	MaxPercent        int32 `json:"max_percent" binding:"min=0,max=100"`
	Active            bool  `json:"active"`
	AlertAdmins       bool  `json:"alert_admins"`
	NotifyUsers       bool  `json:"notify_users"`
	OfferAlternatives bool  `json:"offer_alternatives"`
}
