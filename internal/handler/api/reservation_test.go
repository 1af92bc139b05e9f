//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"event-capacity/internal/handler/api"
	resdto "event-capacity/internal/handler/dto/response"
	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/commands"
	"event-capacity/internal/usecase/queries"
	"event-capacity/tests/common/builder"
	"event-capacity/tests/common/httptest"
	"event-capacity/tests/common/testutil"
	commandsmock "event-capacity/tests/mock/commands"
	queriesmock "event-capacity/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ReservationHandler
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/reservations", s.handler.CreateReservation)
	s.router.GET("/reservations", s.handler.ListParticipantReservations)
	s.router.GET("/reservations/:id", s.handler.GetReservation)
	s.router.POST("/reservations/:id/submit", s.handler.SubmitDraft)
	s.router.POST("/reservations/:id/payment", s.handler.HandlePaymentResult)
	s.router.POST("/reservations/:id/approve", s.handler.Approve)
	s.router.POST("/reservations/:id/cancel", s.handler.Cancel)
	s.router.POST("/reservations/:id/refund", s.handler.Refund)
	s.router.POST("/reservations/:id/check-in", s.handler.CheckIn)
	s.router.POST("/reservations/:id/check-out", s.handler.CheckOut)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func idempotencyHeader(key uuid.UUID) map[string]string {
	return map[string]string{"Idempotency-Key": key.String()}
}

func (s *ReservationHandlerTestSuite) TestCreateReservation() {
	url := "/reservations"

	b := builder.NewReservationBuilder()
	reqBody := b.BuildCreateRequestDTO()
	view := b.BuildView()
	key := uuid.New()

	s.Run("success: returns 201 Created for a fresh reservation", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any(), key).
			Return(&commands.CreateReservationResult{Reservation: view, IsReplayed: false}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, idempotencyHeader(key))

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.ID)
		s.Equal(view.Status, response.Status)
	})

	s.Run("success: returns 200 OK when the key replays", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any(), key).
			Return(&commands.CreateReservationResult{Reservation: view, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, idempotencyHeader(key))

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.ID, response.ID)
	})

	s.Run("error: 400 Bad Request without Idempotency-Key", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "idempotency key required")
	})

	s.Run("error: 400 Bad Request on malformed Idempotency-Key", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid idempotency key")
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
		}{
			{name: "missing field: pool_id", mutate: testutil.Field("pool_id", nil)},
			{name: "missing field: participant_id", mutate: testutil.Field("participant_id", nil)},
			{name: "negative base_price_cents", mutate: testutil.Field("base_price_cents", -1)},
			{name: "malformed pool_id", mutate: testutil.Field("pool_id", "not-a-uuid")},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, idempotencyHeader(uuid.New()))
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 404 Not Found for an unknown pool", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any(), key).
			Return(nil, errs.ErrPoolNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, idempotencyHeader(key))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Capacity pool not found")
	})

	s.Run("error: 409 Conflict when sold out", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any(), key).
			Return(nil, errs.ErrCapacityDenied).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, idempotencyHeader(key))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Sold out")
	})

	s.Run("error: 409 Conflict on duplicate key with different payload", func() {
		s.mockCommands.EXPECT().CreateReservation(gomock.Any(), gomock.Any(), key).
			Return(nil, errs.ErrDuplicateRequest).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, idempotencyHeader(key))
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Duplicate request")
	})
}

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	view := builder.NewReservationBuilder().BuildView()

	s.Run("success: returns 200 OK", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, nil)

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.ParticipantID, response.ParticipantID)
	})

	s.Run("error: 404 Not Found", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), id).Return(nil, errs.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+id.String(), nil, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})

	s.Run("error: 400 Bad Request on malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/not-a-uuid", nil, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation ID")
	})
}

func (s *ReservationHandlerTestSuite) TestListParticipantReservations() {
	participantID := uuid.New()
	url := "/reservations?participant_id=" + participantID.String()

	s.Run("success: returns 200 OK with the participant's reservations", func() {
		view := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) { b.ParticipantID = participantID }).
			BuildView()
		s.mockQueries.EXPECT().GetByParticipant(gomock.Any(), participantID).
			Return([]*queries.ReservationView{view}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, nil)

		var response []resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 1)
		s.Equal(view.ID, response[0].ID)
	})

	s.Run("success: empty list", func() {
		s.mockQueries.EXPECT().GetByParticipant(gomock.Any(), participantID).
			Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, nil)

		var response []resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response)
	})

	s.Run("error: 400 Bad Request on malformed participant id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?participant_id=nope", nil, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid participant ID")
	})
}

func (s *ReservationHandlerTestSuite) TestTransitionEndpoints() {
	id := uuid.New()

	endpoints := []struct {
		name   string
		path   string
		expect func() *gomock.Call
	}{
		{"submit", "/reservations/" + id.String() + "/submit", func() *gomock.Call {
			return s.mockCommands.EXPECT().SubmitDraft(gomock.Any(), id)
		}},
		{"approve", "/reservations/" + id.String() + "/approve", func() *gomock.Call {
			return s.mockCommands.EXPECT().Approve(gomock.Any(), id)
		}},
		{"cancel", "/reservations/" + id.String() + "/cancel", func() *gomock.Call {
			return s.mockCommands.EXPECT().Cancel(gomock.Any(), id)
		}},
		{"refund", "/reservations/" + id.String() + "/refund", func() *gomock.Call {
			return s.mockCommands.EXPECT().Refund(gomock.Any(), id)
		}},
		{"check-in", "/reservations/" + id.String() + "/check-in", func() *gomock.Call {
			return s.mockCommands.EXPECT().CheckIn(gomock.Any(), id)
		}},
		{"check-out", "/reservations/" + id.String() + "/check-out", func() *gomock.Call {
			return s.mockCommands.EXPECT().CheckOut(gomock.Any(), id)
		}},
	}

	for _, ep := range endpoints {
		s.Run("success: "+ep.name+" returns 204 No Content", func() {
			ep.expect().Return(nil).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, ep.path, nil, nil)
			s.Equal(http.StatusNoContent, rec.Code)
		})

		s.Run("error: "+ep.name+" maps illegal transition to 422", func() {
			ep.expect().Return(errs.ErrIllegalTransition).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, ep.path, nil, nil)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Transition not allowed")
		})
	}

	s.Run("error: 404 Not Found for an unknown reservation", func() {
		s.mockCommands.EXPECT().Approve(gomock.Any(), id).Return(errs.ErrReservationNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/approve", nil, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})
}

func (s *ReservationHandlerTestSuite) TestHandlePaymentResult() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/payment"

	s.Run("success: payment succeeded returns 204", func() {
		s.mockCommands.EXPECT().HandlePaymentResult(gomock.Any(), id, true).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"succeeded": true}, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("success: payment failed returns 204", func() {
		s.mockCommands.EXPECT().HandlePaymentResult(gomock.Any(), id, false).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"succeeded": false}, nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 400 Bad Request when succeeded is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 422 when the reservation is not pending", func() {
		s.mockCommands.EXPECT().HandlePaymentResult(gomock.Any(), id, true).Return(errs.ErrIllegalTransition).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"succeeded": true}, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Transition not allowed")
	})
}
