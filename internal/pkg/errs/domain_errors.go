package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Capacity errors
	ErrPoolNotFound   = errors.New("capacity pool not found")
	ErrCapacityDenied = errors.New("capacity denied")
	// ErrCapacityAccounting signals an internal invariant violation
	// (releasing or confirming more than is blocked). It must never be
	// swallowed: it means a double-release or double-confirm upstream.
	ErrCapacityAccounting = errors.New("capacity accounting violation")

	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")
	ErrIllegalTransition   = errors.New("illegal reservation transition")
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// Idempotency errors
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")
	ErrDuplicateRequest       = errors.New("duplicate request with different payload")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
