// Package booking re-validates a requested slot against freshly computed
// availability, then drives the two external side effects: meeting-room
// creation followed by calendar event creation. The flow is linear with
// no retries; a room already created when the calendar write fails is
// not rolled back (accepted inconsistency window).
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"meetbook/internal/availability"
	"meetbook/internal/meetroom"
	"meetbook/internal/models"
	"meetbook/internal/schedule"
)

// SlotSource computes availability; satisfied by *availability.Service.
type SlotSource interface {
	AvailableSlots(ctx context.Context, day time.Time, slotLength float64) ([]availability.Slot, error)
}

// RoomCreator provisions the external meeting room.
type RoomCreator interface {
	CreateRoom(ctx context.Context, name string, start, end time.Time) (*meetroom.Room, error)
}

// EventWriter inserts the confirmed booking into the remote calendar.
type EventWriter interface {
	CreateEvent(ctx context.Context, event *models.Event) (string, error)
}

// Request is one booking attempt.
type Request struct {
	Title        string
	Start        string  // ISO-8601 start instant
	Duration     float64 // hours
	Description  string
	Participants []string
}

// Result is a successful booking.
type Result struct {
	MeetingURL string
	MeetingID  string
	EventUID   string
}

// Service orchestrates bookings.
type Service struct {
	logger    *zap.Logger
	slots     SlotSource
	rooms     RoomCreator
	events    EventWriter
	organizer string
}

func NewService(logger *zap.Logger, slots SlotSource, rooms RoomCreator, events EventWriter, organizer string) *Service {
	return &Service{logger: logger, slots: slots, rooms: rooms, events: events, organizer: organizer}
}

// Book validates the requested slot and, only if it is exactly present in
// freshly computed availability, creates the room and then the calendar
// event. Every failure is a *Error with a stable code.
func (s *Service) Book(ctx context.Context, req Request) (*Result, error) {
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, &Error{Code: CodeInvalidInput, Message: fmt.Sprintf("invalid start time %q", req.Start)}
	}
	start = start.UTC()
	duration := schedule.Duration(req.Duration)
	if duration <= 0 {
		return nil, &Error{Code: CodeInvalidInput, Message: fmt.Sprintf("invalid duration %g", req.Duration)}
	}
	end := start.Add(duration)

	// No cross-midnight bookings: start and end must share a calendar day.
	if start.Format("2006-01-02") != end.Format("2006-01-02") {
		return nil, &Error{Code: CodeCrossDayBooking, Message: "booking must start and end on the same day"}
	}

	slots, err := s.slots.AvailableSlots(ctx, start, req.Duration)
	if err != nil {
		return nil, wrapAvailability(err)
	}

	// Exact match only: same start instant and same duration. No closest
	// slot, no partial overlap.
	if !slotOffered(slots, start, duration) {
		s.logger.Info("requested slot not in availability",
			zap.Time("start", start), zap.Float64("duration", req.Duration))
		return nil, &Error{Code: CodeSlotUnavailable, Message: "requested slot is not available"}
	}

	room, err := s.rooms.CreateRoom(ctx, roomName(req.Title), start, end)
	if err != nil {
		return nil, &Error{Code: CodeRoomCreationFailed, Message: err.Error()}
	}

	event := &models.Event{
		Title:       req.Title,
		Description: describeMeeting(req.Description, room.URL),
		StartTime:   start,
		EndTime:     end,
		Organizer:   s.organizer,
		Attendees:   req.Participants,
	}
	uid, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		// The room is already live at this point and is deliberately not
		// rolled back.
		s.logger.Error("calendar write failed after room creation",
			zap.String("meetingId", room.ID), zap.Error(err))
		return nil, &Error{Code: CodeCalendarWriteFailed, Message: err.Error()}
	}

	s.logger.Info("booking confirmed",
		zap.String("meetingId", room.ID), zap.String("eventUID", uid), zap.Time("start", start))
	return &Result{MeetingURL: room.URL, MeetingID: room.ID, EventUID: uid}, nil
}

func slotOffered(slots []availability.Slot, start time.Time, duration time.Duration) bool {
	for _, slot := range slots {
		if slot.Start.Equal(start) && slot.End.Sub(slot.Start) == duration {
			return true
		}
	}
	return false
}

// roomName derives a room name prefix from the meeting title.
func roomName(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, name)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "meeting"
	}
	return name
}

func describeMeeting(description, roomURL string) string {
	if description == "" {
		return "Join: " + roomURL
	}
	return description + "\n\nJoin: " + roomURL
}
