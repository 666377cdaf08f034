package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meetbook/internal/availability"
	"meetbook/internal/booking"
)

// SlotService computes a day's available slots.
type SlotService interface {
	AvailableSlots(ctx context.Context, day time.Time, slotLength float64) ([]availability.Slot, error)
}

// BookingService performs a booking end to end.
type BookingService interface {
	Book(ctx context.Context, req booking.Request) (*booking.Result, error)
}

// Handler carries the service dependencies of the HTTP surface.
type Handler struct {
	logger  *zap.Logger
	slots   SlotService
	booking BookingService
}

func NewHandler(logger *zap.Logger, slots SlotService, bookingSvc BookingService) *Handler {
	return &Handler{logger: logger, slots: slots, booking: bookingSvc}
}

type slotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GetAvailability handles GET /api/availability?date=YYYY-MM-DD&slotLength=N.
func (h *Handler) GetAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slotLength := 1.0
	if raw := c.Query("slotLength"); raw != "" {
		slotLength, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slotLength must be a number"})
			return
		}
	}

	slots, err := h.slots.AvailableSlots(c.Request.Context(), day.UTC(), slotLength)
	if err != nil {
		var invalid *availability.InvalidSlotLengthError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{
			Start: s.Start.Format(time.RFC3339),
			End:   s.End.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

type bookingInput struct {
	Title        string   `json:"title" binding:"required"`
	Start        string   `json:"start" binding:"required"`
	Duration     float64  `json:"duration" binding:"required"`
	Description  string   `json:"description"`
	Participants []string `json:"participants"`
}

type bookingResponse struct {
	Success    bool   `json:"success"`
	MeetingURL string `json:"meetingUrl,omitempty"`
	MeetingID  string `json:"meetingId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PostBooking handles POST /api/booking.
func (h *Handler) PostBooking(c *gin.Context) {
	var input bookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("rejecting malformed booking payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, bookingResponse{Success: false, Error: "invalid input: " + err.Error()})
		return
	}

	result, err := h.booking.Book(c.Request.Context(), booking.Request{
		Title:        input.Title,
		Start:        input.Start,
		Duration:     input.Duration,
		Description:  input.Description,
		Participants: input.Participants,
	})
	if err != nil {
		status, msg := bookingFailure(err)
		c.JSON(status, bookingResponse{Success: false, Error: msg})
		return
	}

	c.JSON(http.StatusOK, bookingResponse{
		Success:    true,
		MeetingURL: result.MeetingURL,
		MeetingID:  result.MeetingID,
	})
}

// bookingFailure maps booking error codes onto HTTP statuses.
func bookingFailure(err error) (int, string) {
	var bErr *booking.Error
	if !errors.As(err, &bErr) {
		return http.StatusInternalServerError, err.Error()
	}
	switch bErr.Code {
	case booking.CodeInvalidInput, booking.CodeInvalidSlotLength:
		return http.StatusBadRequest, bErr.Message
	case booking.CodeCrossDayBooking, booking.CodeSlotUnavailable:
		return http.StatusConflict, bErr.Message
	default:
		return http.StatusBadGateway, bErr.Message
	}
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
