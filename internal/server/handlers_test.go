package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetbook/internal/availability"
	"meetbook/internal/booking"
)

type stubSlots struct {
	slots []availability.Slot
	err   error
}

func (s *stubSlots) AvailableSlots(ctx context.Context, day time.Time, slotLength float64) ([]availability.Slot, error) {
	return s.slots, s.err
}

type stubBooking struct {
	result *booking.Result
	err    error
}

func (s *stubBooking) Book(ctx context.Context, req booking.Request) (*booking.Result, error) {
	return s.result, s.err
}

func testRouter(slots SlotService, b BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(zap.NewNop(), NewHandler(zap.NewNop(), slots, b), 1000, false)
}

func TestGetAvailability(t *testing.T) {
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	router := testRouter(&stubSlots{slots: []availability.Slot{{Start: start, End: start.Add(time.Hour)}}}, &stubBooking{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/availability?date=2025-06-02&slotLength=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "2025-06-02T08:00:00Z", body[0]["start"])
	assert.Equal(t, "2025-06-02T09:00:00Z", body[0]["end"])
}

func TestGetAvailabilityEmptyIsJSONArray(t *testing.T) {
	router := testRouter(&stubSlots{}, &stubBooking{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/availability?date=2025-06-08", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetAvailabilityBadInputs(t *testing.T) {
	router := testRouter(&stubSlots{}, &stubBooking{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/availability?date=June+2nd", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/availability?date=2025-06-02&slotLength=long", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailabilityInvalidSlotLength(t *testing.T) {
	router := testRouter(&stubSlots{err: &availability.InvalidSlotLengthError{Length: 3}}, &stubBooking{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/availability?date=2025-06-02&slotLength=3", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailabilityFetchFailure(t *testing.T) {
	router := testRouter(&stubSlots{err: &availability.FetchError{Message: "server unreachable"}}, &stubBooking{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/availability?date=2025-06-02", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPostBookingSuccess(t *testing.T) {
	router := testRouter(&stubSlots{}, &stubBooking{result: &booking.Result{
		MeetingURL: "https://rooms.example/sync-1", MeetingID: "m-1",
	}})

	payload := `{"title":"Sync","start":"2025-06-02T08:00:00Z","duration":1,"participants":["a@example.com"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/booking", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "m-1", body.MeetingID)
}

func TestPostBookingErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *booking.Error
		wantStatus int
	}{
		{"slot unavailable", &booking.Error{Code: booking.CodeSlotUnavailable, Message: "taken"}, http.StatusConflict},
		{"cross day", &booking.Error{Code: booking.CodeCrossDayBooking, Message: "crosses midnight"}, http.StatusConflict},
		{"invalid input", &booking.Error{Code: booking.CodeInvalidInput, Message: "bad start"}, http.StatusBadRequest},
		{"room failed", &booking.Error{Code: booking.CodeRoomCreationFailed, Message: "quota"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&stubSlots{}, &stubBooking{err: tt.err})

			payload := `{"title":"Sync","start":"2025-06-02T08:00:00Z","duration":1}`
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/booking", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body bookingResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.err.Message, body.Error)
		})
	}
}

func TestPostBookingRejectsMissingFields(t *testing.T) {
	router := testRouter(&stubSlots{}, &stubBooking{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/booking", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	router := testRouter(&stubSlots{}, &stubBooking{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
