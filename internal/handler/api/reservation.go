package api

import (
	"context"
	"errors"
	"net/http"

	reqdto "event-capacity/internal/handler/dto/request"
	resdto "event-capacity/internal/handler/dto/response"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	commands commands.ReservationCommands
	queries  queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, qs queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		commands: cmds,
		queries:  qs,
	}
}

// @Summary Create reservation
// @Description Reserve one capacity unit, or create a draft without capacity
// @Tags reservations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 200 {object} resdto.ReservationResponse "Replayed earlier result"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	idempotencyKey, err := h.getIdempotencyKey(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req reqdto.CreateReservationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	params := commands.CreateReservationParams{
		PoolID:         req.PoolID,
		ParticipantID:  req.ParticipantID,
		BasePriceCents: req.BasePriceCents,
		Draft:          req.Draft,
	}

	result, err := h.commands.CreateReservation(c.Request.Context(), params, idempotencyKey)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromReservationView(result.Reservation))
}

// @Summary Get reservation
// @Description Get reservation by ID
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary List participant reservations
// @Description List all reservations held by one participant
// @Tags reservations
// @Produce json
// @Param participant_id query string true "Participant ID"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) ListParticipantReservations(c *gin.Context) {
	participantID, err := uuid.Parse(c.Query("participant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid participant ID format"})
		return
	}

	views, err := h.queries.GetByParticipant(c.Request.Context(), participantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]*resdto.ReservationResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromReservationView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Submit draft
// @Description Move a draft into the payment window, taking one capacity unit
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/submit [post]
func (h *ReservationHandler) SubmitDraft(c *gin.Context) {
	h.applyTransition(c, h.commands.SubmitDraft)
}

// @Summary Payment result callback
// @Description Record the payment outcome for a pending reservation
// @Tags reservations
// @Accept json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.PaymentResultRequest true "Payment outcome"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/payment [post]
func (h *ReservationHandler) HandlePaymentResult(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req reqdto.PaymentResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.commands.HandlePaymentResult(c.Request.Context(), id, *req.Succeeded); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Approve reservation
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c *gin.Context) {
	h.applyTransition(c, h.commands.Approve)
}

// @Summary Cancel reservation
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.applyTransition(c, h.commands.Cancel)
}

// @Summary Refund reservation
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/refund [post]
func (h *ReservationHandler) Refund(c *gin.Context) {
	h.applyTransition(c, h.commands.Refund)
}

// @Summary Check in attendee
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	h.applyTransition(c, h.commands.CheckIn)
}

// @Summary Check out attendee
// @Tags reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	h.applyTransition(c, h.commands.CheckOut)
}

func (h *ReservationHandler) applyTransition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := apply(c.Request.Context(), id); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReservationHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid idempotency key format")
	}
	return key, nil
}
