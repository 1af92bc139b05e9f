//go:build e2e

package reservation_test

import (
	"net/http"
	"testing"

	resdto "event-capacity/internal/handler/dto/response"
	"event-capacity/tests/common/httptest"
	"event-capacity/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const (
	poolsURL        = "/api/pools"
	reservationsURL = "/api/reservations"
)

type reservationSuite struct {
	e2e.SharedSuite
}

func TestReservationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(reservationSuite))
}

func (s *reservationSuite) createPool(total int32) uuid.UUID {
	body := map[string]any{
		"scope_id":       uuid.New().String(),
		"scope_type":     "event",
		"total_capacity": total,
	}
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, poolsURL, body, nil)

	var response resdto.CreatePoolResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
	return response.ID
}

func (s *reservationSuite) createReservation(poolID uuid.UUID, key uuid.UUID) resdto.ReservationResponse {
	body := map[string]any{
		"pool_id":          poolID.String(),
		"participant_id":   uuid.New().String(),
		"base_price_cents": 5000,
	}
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, reservationsURL, body,
		map[string]string{"Idempotency-Key": key.String()})

	var response resdto.ReservationResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
	return response
}

func (s *reservationSuite) availability(poolID uuid.UUID) resdto.PoolAvailabilityResponse {
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet,
		poolsURL+"/"+poolID.String()+"/availability", nil, nil)

	var response resdto.PoolAvailabilityResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	return response
}

func (s *reservationSuite) TestReservationLifecycle() {
	s.Run("full flow: reserve, pay, approve, availability tracks each step", func() {
		poolID := s.createPool(10)
		res := s.createReservation(poolID, uuid.New())
		s.Equal("pending_payment", res.Status)
		s.NotNil(res.HoldExpiresAt)

		avail := s.availability(poolID)
		s.Equal(int32(9), avail.Available)
		s.Equal(int32(1), avail.Blocked)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/payment", map[string]any{"succeeded": true}, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/approve", nil, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		avail = s.availability(poolID)
		s.Equal(int32(9), avail.Available)
		s.Equal(int32(0), avail.Blocked)
		s.Equal(int32(1), avail.Confirmed)

		var view resdto.ReservationResponse
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet,
			reservationsURL+"/"+res.ID.String(), nil, nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &view)

		expected := &resdto.ReservationResponse{
			ID:              res.ID,
			PoolID:          poolID,
			ParticipantID:   res.ParticipantID,
			Status:          "confirmed",
			Attendance:      "none",
			BasePriceCents:  5000,
			FinalPriceCents: 5000,
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(resdto.ReservationResponse{}, "ScopeID", "ScopeType", "CreatedAt", "StatusChangedAt"),
		}
		if diff := cmp.Diff(expected, &view, opts...); diff != "" {
			s.T().Errorf("Reservation response mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("idempotent create: the same key replays with 200", func() {
		poolID := s.createPool(10)
		key := uuid.New()
		body := map[string]any{
			"pool_id":          poolID.String(),
			"participant_id":   uuid.New().String(),
			"base_price_cents": 5000,
		}
		headers := map[string]string{"Idempotency-Key": key.String()}

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, reservationsURL, body, headers)
		var first resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &first)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, reservationsURL, body, headers)
		var second resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &second)
		s.Equal(first.ID, second.ID)

		s.Equal(int32(9), s.availability(poolID).Available)
	})

	s.Run("payment failure releases the hold", func() {
		poolID := s.createPool(10)
		res := s.createReservation(poolID, uuid.New())

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/payment", map[string]any{"succeeded": false}, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		avail := s.availability(poolID)
		s.Equal(int32(10), avail.Available)
		s.Equal(int32(0), avail.Blocked)
	})

	s.Run("sold out pool denies with 409", func() {
		poolID := s.createPool(1)
		s.createReservation(poolID, uuid.New())

		body := map[string]any{
			"pool_id":          poolID.String(),
			"participant_id":   uuid.New().String(),
			"base_price_cents": 5000,
		}
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, reservationsURL, body,
			map[string]string{"Idempotency-Key": uuid.New().String()})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Sold out")
	})

	s.Run("overbooking margin admits past sold out and reports risk", func() {
		poolID := s.createPool(2)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPut,
			poolsURL+"/"+poolID.String()+"/overbooking",
			map[string]any{"max_percent": 50, "active": true, "alert_admins": true}, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		s.createReservation(poolID, uuid.New())
		s.createReservation(poolID, uuid.New())

		over := s.createReservation(poolID, uuid.New())
		s.True(over.Overbooked)

		avail := s.availability(poolID)
		s.Equal(int32(0), avail.Available)
		s.Equal(int32(3), avail.Blocked)
		s.True(avail.OverbookPercent > 0)
	})

	s.Run("double approve is rejected with 422", func() {
		poolID := s.createPool(5)
		res := s.createReservation(poolID, uuid.New())

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/payment", map[string]any{"succeeded": true}, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/approve", nil, nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost,
			reservationsURL+"/"+res.ID.String()+"/approve", nil, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Transition not allowed")
	})
}
