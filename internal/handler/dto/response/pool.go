package response

import (
	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreatePoolResponse struct {
	ID uuid.UUID `json:"id"`
}

type PoolAvailabilityResponse struct {
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

func FromAvailabilityView(rm *queries.PoolAvailabilityView) *PoolAvailabilityResponse {
	return &PoolAvailabilityResponse{
		PoolID:            rm.PoolID,
		ScopeID:           rm.ScopeID,
		ScopeType:         rm.ScopeType,
		TotalCapacity:     rm.TotalCapacity,
		Available:         rm.Available,
		Blocked:           rm.Blocked,
		Confirmed:         rm.Confirmed,
		OverbookPercent:   rm.OverbookPercent,
		RiskLevel:         rm.RiskLevel,
		OverbookingActive: rm.OverbookingActive,
	}
}
