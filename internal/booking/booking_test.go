package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetbook/internal/availability"
	"meetbook/internal/meetroom"
	"meetbook/internal/models"
)

type fakeSlots struct {
	slots []availability.Slot
	err   error
}

func (f *fakeSlots) AvailableSlots(ctx context.Context, day time.Time, slotLength float64) ([]availability.Slot, error) {
	return f.slots, f.err
}

type fakeRooms struct {
	err   error
	calls int
	order *[]string
}

func (f *fakeRooms) CreateRoom(ctx context.Context, name string, start, end time.Time) (*meetroom.Room, error) {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, "room")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &meetroom.Room{ID: "m-1", URL: "https://rooms.example/" + name, Start: start, End: end}, nil
}

type fakeEvents struct {
	err   error
	calls int
	order *[]string
	last  *models.Event
}

func (f *fakeEvents) CreateEvent(ctx context.Context, event *models.Event) (string, error) {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, "event")
	}
	f.last = event
	if f.err != nil {
		return "", f.err
	}
	return "uid-1", nil
}

func mondaySlots() []availability.Slot {
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	return []availability.Slot{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)},
	}
}

func TestBookSuccessCallsRoomThenEvent(t *testing.T) {
	var order []string
	rooms := &fakeRooms{order: &order}
	events := &fakeEvents{order: &order}
	svc := NewService(zap.NewNop(), &fakeSlots{slots: mondaySlots()}, rooms, events, "host@example.com")

	res, err := svc.Book(context.Background(), Request{
		Title:        "Weekly Sync",
		Start:        "2025-06-02T08:00:00Z",
		Duration:     1,
		Participants: []string{"a@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"room", "event"}, order)
	assert.Equal(t, 1, rooms.calls)
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, "m-1", res.MeetingID)
	assert.Equal(t, "uid-1", res.EventUID)
	assert.Equal(t, "host@example.com", events.last.Organizer)
	assert.Contains(t, events.last.Description, "https://rooms.example/weekly-sync")
}

func TestBookRejectsOffGridStartWithoutSideEffects(t *testing.T) {
	rooms := &fakeRooms{}
	events := &fakeEvents{}
	svc := NewService(zap.NewNop(), &fakeSlots{slots: mondaySlots()}, rooms, events, "")

	// One minute off any candidate.
	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T08:01:00Z", Duration: 1})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeSlotUnavailable, bErr.Code)
	assert.Zero(t, rooms.calls)
	assert.Zero(t, events.calls)
}

func TestBookRequiresExactDuration(t *testing.T) {
	svc := NewService(zap.NewNop(), &fakeSlots{slots: mondaySlots()}, &fakeRooms{}, &fakeEvents{}, "")

	// Start matches a candidate but the duration does not.
	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T08:00:00Z", Duration: 0.5})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeSlotUnavailable, bErr.Code)
}

func TestBookInvalidStart(t *testing.T) {
	rooms := &fakeRooms{}
	svc := NewService(zap.NewNop(), &fakeSlots{}, rooms, &fakeEvents{}, "")

	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "tomorrow-ish", Duration: 1})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidInput, bErr.Code)
	assert.Zero(t, rooms.calls)
}

func TestBookRejectsCrossDay(t *testing.T) {
	rooms := &fakeRooms{}
	svc := NewService(zap.NewNop(), &fakeSlots{}, rooms, &fakeEvents{}, "")

	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T23:30:00Z", Duration: 1})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeCrossDayBooking, bErr.Code)
	assert.Zero(t, rooms.calls)
}

func TestBookRoomFailureSkipsCalendarWrite(t *testing.T) {
	rooms := &fakeRooms{err: &meetroom.APIError{Code: "quota", Message: "plan limit reached"}}
	events := &fakeEvents{}
	svc := NewService(zap.NewNop(), &fakeSlots{slots: mondaySlots()}, rooms, events, "")

	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T08:00:00Z", Duration: 1})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeRoomCreationFailed, bErr.Code)
	assert.Contains(t, bErr.Message, "plan limit reached")
	assert.Zero(t, events.calls, "no calendar event after room failure")
}

func TestBookCalendarWriteFailureKeepsRoom(t *testing.T) {
	rooms := &fakeRooms{}
	events := &fakeEvents{err: errors.New("412 precondition failed")}
	svc := NewService(zap.NewNop(), &fakeSlots{slots: mondaySlots()}, rooms, events, "")

	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T08:00:00Z", Duration: 1})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeCalendarWriteFailed, bErr.Code)
	assert.Equal(t, 1, rooms.calls, "room was created and is not rolled back")
}

func TestBookMapsAvailabilityErrors(t *testing.T) {
	svc := NewService(zap.NewNop(), &fakeSlots{err: &availability.InvalidSlotLengthError{Length: 3}}, &fakeRooms{}, &fakeEvents{}, "")

	_, err := svc.Book(context.Background(), Request{Title: "x", Start: "2025-06-02T08:00:00Z", Duration: 3})

	var bErr *Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, CodeInvalidSlotLength, bErr.Code)
}

func TestRoomName(t *testing.T) {
	assert.Equal(t, "weekly-sync", roomName("Weekly Sync"))
	assert.Equal(t, "meeting", roomName("!!!"))
	assert.Equal(t, "q3-plan", roomName("  Q3 Plan  "))
}
