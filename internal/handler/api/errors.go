package api

import (
	"errors"
	"net/http"

	"event-capacity/internal/handler/httperr"
	"event-capacity/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// respondCommandError maps usecase sentinels to the shared HTTP vocabulary of
// the write endpoints.
func respondCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrPoolNotFound):
		httperr.Abort(c, http.StatusNotFound, err, "Capacity pool not found")
	case errors.Is(err, errs.ErrReservationNotFound):
		httperr.Abort(c, http.StatusNotFound, err, "Reservation not found")
	case errors.Is(err, errs.ErrCapacityDenied):
		httperr.Abort(c, http.StatusConflict, err, "Sold out")
	case errors.Is(err, errs.ErrDuplicateRequest):
		httperr.Abort(c, http.StatusConflict, err, "Duplicate request with different parameters")
	case errors.Is(err, errs.ErrIdempotencyInProgress):
		httperr.Abort(c, http.StatusConflict, err, "Request is currently being processed")
	case errors.Is(err, errs.ErrConcurrencyConflict):
		httperr.Abort(c, http.StatusConflict, err, "Concurrent update, retry the request")
	case errors.Is(err, errs.ErrIllegalTransition):
		httperr.Abort(c, http.StatusUnprocessableEntity, err, "Transition not allowed from the current state")
	case errors.Is(err, errs.ErrDomainValidation):
		httperr.Abort(c, http.StatusUnprocessableEntity, err, "Domain validation failed")
	case errors.Is(err, errs.ErrIdempotencyKeyRequired):
		httperr.Abort(c, http.StatusBadRequest, err, "Idempotency-Key header is required")
	default:
		httperr.Abort(c, http.StatusInternalServerError, err, "Internal server error")
	}
}
