//go:build unit || e2e

package builder

import (
	"time"

	"event-capacity/internal/domain/reservation"
	reqdto "event-capacity/internal/handler/dto/request"
	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ID              uuid.UUID
	PoolID          uuid.UUID
	ParticipantID   uuid.UUID
	Status          reservation.Status
	Attendance      reservation.Attendance
	HoldExpiresAt   *time.Time
	BasePriceCents  int64
	DiscountCents   int64
	Overbooked      bool
	CreatedAt       time.Time
	StatusChangedAt time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now()
	holdExpiry := now.Add(15 * time.Minute)
	return &ReservationBuilder{
		ID:              uuid.New(),
		PoolID:          uuid.New(),
		ParticipantID:   uuid.New(),
		Status:          reservation.StatusPendingPayment,
		Attendance:      reservation.AttendanceNone,
		HoldExpiresAt:   &holdExpiry,
		BasePriceCents:  5000,
		CreatedAt:       now,
		StatusChangedAt: now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithStatus(status reservation.Status) *ReservationBuilder {
	b.Status = status
	if status != reservation.StatusPendingPayment {
		b.HoldExpiresAt = nil
	}
	return b
}

func (b *ReservationBuilder) WithHoldExpiry(t time.Time) *ReservationBuilder {
	b.HoldExpiresAt = &t
	return b
}

func (b *ReservationBuilder) BuildDomain() *reservation.Reservation {
	return reservation.ReconstructReservation(
		b.ID, b.PoolID, b.ParticipantID,
		b.Status, b.Attendance, b.HoldExpiresAt,
		b.BasePriceCents, b.DiscountCents, b.Overbooked,
		b.CreatedAt, b.StatusChangedAt,
	)
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:              b.ID,
		PoolID:          b.PoolID,
		ScopeID:         uuid.New(),
		ScopeType:       "event",
		ParticipantID:   b.ParticipantID,
		Status:          string(b.Status),
		Attendance:      string(b.Attendance),
		HoldExpiresAt:   b.HoldExpiresAt,
		BasePriceCents:  b.BasePriceCents,
		DiscountCents:   b.DiscountCents,
		FinalPriceCents: b.BasePriceCents - b.DiscountCents,
		Overbooked:      b.Overbooked,
		CreatedAt:       b.CreatedAt,
		StatusChangedAt: b.StatusChangedAt,
	}
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		PoolID:         b.PoolID,
		ParticipantID:  b.ParticipantID,
		BasePriceCents: b.BasePriceCents,
	}
}
