package capacity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrAccountingViolation means a release or confirm would exceed the
	// currently blocked amount. That is never a user error: something
	// upstream released or confirmed the same unit twice.
	ErrAccountingViolation = errors.New("capacity accounting violation")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidCapacity     = errors.New("capacity cannot be negative")
)

type ScopeType string

const (
	ScopeEvent   ScopeType = "event"
	ScopeSession ScopeType = "session"
)

func (s ScopeType) IsValid() bool {
	switch s {
	case ScopeEvent, ScopeSession:
		return true
	default:
		return false
	}
}

// Pool is the accounting unit for one reservation scope (an event, or one
// session of an event). It is the single source of truth for seat counts;
// display counters are derived from it, never maintained alongside it.
//
// A nil total means unlimited capacity: grants always succeed, blocked and
// confirmed are still tracked, and overbooking does not apply.
type Pool struct {
	id         uuid.UUID
	scopeID    uuid.UUID
	scopeType  ScopeType
	total      *int32
	available  int32
	blocked    int32
	confirmed  int32
	eventStart *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

func NewPool(scopeID uuid.UUID, scopeType ScopeType, total *int32, eventStart *time.Time) (*Pool, error) {
	if !scopeType.IsValid() {
		return nil, errors.New("invalid scope type")
	}
	var available int32
	if total != nil {
		if *total < 0 {
			return nil, ErrInvalidCapacity
		}
		available = *total
	}
	return &Pool{
		id:         uuid.New(),
		scopeID:    scopeID,
		scopeType:  scopeType,
		total:      total,
		available:  available,
		eventStart: eventStart,
	}, nil
}

func ReconstructPool(
	id, scopeID uuid.UUID,
	scopeType ScopeType,
	total *int32,
	available, blocked, confirmed int32,
	eventStart *time.Time,
	createdAt, updatedAt time.Time,
) *Pool {
	return &Pool{
		id:         id,
		scopeID:    scopeID,
		scopeType:  scopeType,
		total:      total,
		available:  available,
		blocked:    blocked,
		confirmed:  confirmed,
		eventStart: eventStart,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (p *Pool) ID() uuid.UUID          { return p.id }
func (p *Pool) ScopeID() uuid.UUID     { return p.scopeID }
func (p *Pool) ScopeType() ScopeType   { return p.scopeType }
func (p *Pool) Total() *int32          { return p.total }
func (p *Pool) Available() int32       { return p.available }
func (p *Pool) Blocked() int32         { return p.blocked }
func (p *Pool) Confirmed() int32       { return p.confirmed }
func (p *Pool) EventStart() *time.Time { return p.eventStart }
func (p *Pool) CreatedAt() time.Time   { return p.createdAt }
func (p *Pool) UpdatedAt() time.Time   { return p.updatedAt }

func (p *Pool) IsUnlimited() bool { return p.total == nil }

// Committed is the number of units currently counted against the ceiling:
// everything blocked plus everything permanently consumed.
func (p *Pool) Committed() int32 { return p.blocked + p.confirmed }

// Reserve moves quantity units from available to blocked. It fails with
// ErrInsufficientCapacity when available is short; the caller may then ask
// the overbooking controller whether the deficit can be covered.
func (p *Pool) Reserve(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.IsUnlimited() {
		p.blocked += quantity
		return nil
	}
	if p.available < quantity {
		return ErrInsufficientCapacity
	}
	p.available -= quantity
	p.blocked += quantity
	return nil
}

// ReserveOverbooked grants quantity units out of the overbooking margin:
// blocked grows, available stays untouched. Legality of the grant (margin
// size, risk level, config active) is the overbooking controller's call;
// this method only does the arithmetic.
func (p *Pool) ReserveOverbooked(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.blocked += quantity
	return nil
}

// Confirm permanently consumes quantity blocked units. The units do not
// return to available.
func (p *Pool) Confirm(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.blocked {
		return ErrAccountingViolation
	}
	p.blocked -= quantity
	p.confirmed += quantity
	return nil
}

// Release returns quantity blocked units to available. Releasing more than
// is blocked is a hard failure, never a clamp: a clamp here would hide
// double-release bugs.
func (p *Pool) Release(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.blocked {
		return ErrAccountingViolation
	}
	p.blocked -= quantity
	if !p.IsUnlimited() {
		p.available += quantity
		// An overbooked unit vanishes on release instead of turning into a
		// regular seat: available never exceeds the nominal headroom.
		if headroom := *p.total - p.confirmed - p.blocked; p.available > headroom {
			p.available = headroom
		}
		if p.available < 0 {
			p.available = 0
		}
	}
	return nil
}

// ReleaseConfirmed returns a permanently consumed unit to available; used
// only for pre-event cancellation of an already confirmed reservation.
func (p *Pool) ReleaseConfirmed(quantity int32) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.confirmed {
		return ErrAccountingViolation
	}
	p.confirmed -= quantity
	if !p.IsUnlimited() {
		p.available += quantity
		if headroom := *p.total - p.confirmed - p.blocked; p.available > headroom {
			p.available = headroom
		}
		if p.available < 0 {
			p.available = 0
		}
	}
	return nil
}

func (p *Pool) SetTotalCapacity(total *int32) error {
	if total == nil {
		p.total = nil
		p.available = 0
		return nil
	}
	if *total < 0 {
		return ErrInvalidCapacity
	}
	// New headroom relative to what is already committed. Shrinking below
	// the committed count leaves available at zero; existing holds are
	// honored and drain naturally.
	headroom := *total - p.Committed()
	if headroom < 0 {
		headroom = 0
	}
	p.total = total
	p.available = headroom
	return nil
}

// CheckInvariant verifies available + blocked + confirmed never exceeds the
// authorized ceiling (total plus the overbooking margin).
func (p *Pool) CheckInvariant(overbookMargin int32) error {
	if p.available < 0 || p.blocked < 0 || p.confirmed < 0 {
		return ErrAccountingViolation
	}
	if p.IsUnlimited() {
		return nil
	}
	if p.available+p.blocked+p.confirmed > *p.total+overbookMargin {
		return ErrAccountingViolation
	}
	return nil
}
