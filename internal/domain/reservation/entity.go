package reservation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
	ErrNotConfirmed     = errors.New("reservation is not confirmed")
	ErrNotCheckedIn     = errors.New("reservation is not checked in")
	ErrInvalidStatus    = errors.New("invalid reservation status")
)

// IllegalTransitionError names the current and the attempted status; it is
// always a caller or logic bug, never a recoverable condition.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %q to %q", e.From, e.To)
}

// Reservation is one participant's claim against a capacity pool. It is
// created by the lifecycle manager and mutated only through legal transitions;
// terminal reservations are kept for audit.
type Reservation struct {
	id              uuid.UUID
	poolID          uuid.UUID
	participantID   uuid.UUID
	status          Status
	attendance      Attendance
	holdExpiresAt   *time.Time
	basePriceCents  int64
	discountCents   int64
	overbooked      bool
	createdAt       time.Time
	statusChangedAt time.Time
}

func newReservation(poolID, participantID uuid.UUID, status Status, basePriceCents, discountCents int64, now time.Time) (*Reservation, error) {
	if basePriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if discountCents < 0 {
		return nil, ErrNegativeDiscount
	}
	return &Reservation{
		id:              uuid.New(),
		poolID:          poolID,
		participantID:   participantID,
		status:          status,
		attendance:      AttendanceNone,
		basePriceCents:  basePriceCents,
		discountCents:   discountCents,
		createdAt:       now,
		statusChangedAt: now,
	}, nil
}

func ReconstructReservation(
	id, poolID, participantID uuid.UUID,
	status Status,
	attendance Attendance,
	holdExpiresAt *time.Time,
	basePriceCents, discountCents int64,
	overbooked bool,
	createdAt, statusChangedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		poolID:          poolID,
		participantID:   participantID,
		status:          status,
		attendance:      attendance,
		holdExpiresAt:   holdExpiresAt,
		basePriceCents:  basePriceCents,
		discountCents:   discountCents,
		overbooked:      overbooked,
		createdAt:       createdAt,
		statusChangedAt: statusChangedAt,
	}
}

func (r *Reservation) ID() uuid.UUID              { return r.id }
func (r *Reservation) PoolID() uuid.UUID          { return r.poolID }
func (r *Reservation) ParticipantID() uuid.UUID   { return r.participantID }
func (r *Reservation) Status() Status             { return r.status }
func (r *Reservation) Attendance() Attendance     { return r.attendance }
func (r *Reservation) HoldExpiresAt() *time.Time  { return r.holdExpiresAt }
func (r *Reservation) BasePriceCents() int64      { return r.basePriceCents }
func (r *Reservation) DiscountCents() int64       { return r.discountCents }
func (r *Reservation) Overbooked() bool           { return r.overbooked }
func (r *Reservation) CreatedAt() time.Time       { return r.createdAt }
func (r *Reservation) StatusChangedAt() time.Time { return r.statusChangedAt }

// FinalPriceCents never goes below zero, whatever the discount engine said.
func (r *Reservation) FinalPriceCents() int64 {
	final := r.basePriceCents - r.discountCents
	if final < 0 {
		return 0
	}
	return final
}

func (r *Reservation) MarkOverbooked() { r.overbooked = true }

// HoldExpired reports whether a pending-payment hold has passed its deadline.
func (r *Reservation) HoldExpired(now time.Time) bool {
	return r.status == StatusPendingPayment &&
		r.holdExpiresAt != nil &&
		now.After(*r.holdExpiresAt)
}

// ApplyTransition validates the edge against the transitions table and moves
// the reservation, maintaining the invariant that holdExpiresAt is set iff
// the status is PENDING_PAYMENT. The paired pool effect is returned for the
// lifecycle manager to apply in the same unit of work.
func (r *Reservation) ApplyTransition(to Status, now time.Time, holdTTL time.Duration) (Transition, error) {
	tr, ok := TransitionFor(r.status, to)
	if !ok {
		return Transition{}, &IllegalTransitionError{From: r.status, To: to}
	}

	r.status = to
	r.statusChangedAt = now
	if to == StatusPendingPayment {
		expires := now.Add(holdTTL)
		r.holdExpiresAt = &expires
	} else {
		r.holdExpiresAt = nil
	}
	return tr, nil
}

// CheckIn and CheckOut track attendance on confirmed reservations only.
func (r *Reservation) CheckIn() error {
	if r.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	r.attendance = AttendanceCheckedIn
	return nil
}

func (r *Reservation) CheckOut() error {
	if r.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	if r.attendance != AttendanceCheckedIn {
		return ErrNotCheckedIn
	}
	r.attendance = AttendanceCheckedOut
	return nil
}
