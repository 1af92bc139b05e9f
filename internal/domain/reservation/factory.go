package reservation

import (
	"time"

	"event-capacity/internal/pkg/clock"

	"github.com/google/uuid"
)

// DiscountSource is the external coupon/discount engine: given a participant,
// a scope and a base price it returns a discount amount. The core treats it
// as one opaque synchronous call made before capacity is touched.
type DiscountSource interface {
	DiscountCents(participantID, scopeID uuid.UUID, basePriceCents int64) int64
}

// NoDiscount is the default source for deployments without a coupon engine.
type NoDiscount struct{}

func (NoDiscount) DiscountCents(_, _ uuid.UUID, _ int64) int64 { return 0 }

type Factory struct {
	Clock    clock.Clock
	Discount DiscountSource
}

func NewFactory(clk clock.Clock, discount DiscountSource) *Factory {
	return &Factory{Clock: clk, Discount: discount}
}

// NewDraft creates a reservation holding no capacity yet.
func (f *Factory) NewDraft(poolID, scopeID, participantID uuid.UUID, basePriceCents int64) (*Reservation, error) {
	discount := f.Discount.DiscountCents(participantID, scopeID, basePriceCents)
	if discount < 0 {
		discount = 0
	}
	return newReservation(poolID, participantID, StatusDraft, basePriceCents, discount, f.Clock.Now())
}

// NewPendingPayment creates a reservation directly in PENDING_PAYMENT with
// its hold expiry set; the caller blocks the capacity unit in the same unit
// of work.
func (f *Factory) NewPendingPayment(poolID, scopeID, participantID uuid.UUID, basePriceCents int64, holdTTL time.Duration) (*Reservation, error) {
	discount := f.Discount.DiscountCents(participantID, scopeID, basePriceCents)
	if discount < 0 {
		discount = 0
	}
	now := f.Clock.Now()
	res, err := newReservation(poolID, participantID, StatusPendingPayment, basePriceCents, discount, now)
	if err != nil {
		return nil, err
	}
	expires := now.Add(holdTTL)
	res.holdExpiresAt = &expires
	return res, nil
}
