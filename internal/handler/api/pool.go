package api

import (
	"errors"
	"net/http"

	"event-capacity/internal/domain/capacity"
	reqdto "event-capacity/internal/handler/dto/request"
	resdto "event-capacity/internal/handler/dto/response"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PoolHandler struct {
	commands commands.PoolCommands
	queries  queries.PoolQueries
}

func NewPoolHandler(cmds commands.PoolCommands, qs queries.PoolQueries) *PoolHandler {
	return &PoolHandler{
		commands: cmds,
		queries:  qs,
	}
}

// @Summary Create capacity pool
// @Description Create a capacity pool for an event or session scope
// @Tags pools
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePoolRequest true "Pool definition"
// @Success 201 {object} resdto.CreatePoolResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /pools [post]
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var req reqdto.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	id, err := h.commands.CreatePool(c.Request.Context(), commands.CreatePoolParams{
		ScopeID:       req.ScopeID,
		ScopeType:     capacity.ScopeType(req.ScopeType),
		TotalCapacity: req.TotalCapacity,
		EventStart:    req.EventStart,
	})
	if err != nil {
		if errors.Is(err, errs.ErrConcurrencyConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Pool already exists for this scope"})
			return
		}
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.CreatePoolResponse{ID: id})
}

// @Summary Get pool availability
// @Description Availability snapshot including overbooking risk
// @Tags pools
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} resdto.PoolAvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pools/{id}/availability [get]
func (h *PoolHandler) GetAvailability(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetAvailability(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrPoolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Capacity pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Set pool capacity
// @Description Change the nominal total capacity; omit to make it unlimited
// @Tags pools
// @Accept json
// @Param id path string true "Pool ID"
// @Param request body reqdto.SetCapacityRequest true "New capacity"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /pools/{id}/capacity [put]
func (h *PoolHandler) SetCapacity(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req reqdto.SetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.commands.SetCapacity(c.Request.Context(), id, req.TotalCapacity); err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Configure overbooking
// @Description Set the overbooking policy for one pool
// @Tags pools
// @Accept json
// @Param id path string true "Pool ID"
// @Param request body reqdto.ConfigureOverbookingRequest true "Overbooking policy"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /pools/{id}/overbooking [put]
func (h *PoolHandler) ConfigureOverbooking(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req reqdto.ConfigureOverbookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := h.commands.ConfigureOverbooking(c.Request.Context(), commands.ConfigureOverbookingParams{
		PoolID:            id,
		MaxPercent:        req.MaxPercent,
		Active:            req.Active,
		AlertAdmins:       req.AlertAdmins,
		NotifyUsers:       req.NotifyUsers,
		OfferAlternatives: req.OfferAlternatives,
	})
	if err != nil {
		respondCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PoolHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID format"})
		return uuid.Nil, false
	}
	return id, true
}
