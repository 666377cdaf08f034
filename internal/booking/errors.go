package booking

import (
	"errors"
	"fmt"

	"meetbook/internal/availability"
)

// Stable booking failure codes.
const (
	CodeInvalidInput        = "invalidInput"
	CodeInvalidSlotLength   = "invalidSlotLength"
	CodeCrossDayBooking     = "crossDayBooking"
	CodeSlotUnavailable     = "slotUnavailable"
	CodeCalendarFetchFailed = "calendarFetchFailed"
	CodeRoomCreationFailed  = "roomCreationFailed"
	CodeCalendarWriteFailed = "calendarWriteFailed"
)

// Error is a booking failure with a stable code and a human-readable
// message. The raw transport error never crosses this boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// wrapAvailability maps an availability failure onto a booking error.
func wrapAvailability(err error) error {
	var invalid *availability.InvalidSlotLengthError
	if errors.As(err, &invalid) {
		return &Error{Code: CodeInvalidSlotLength, Message: invalid.Error()}
	}
	var fetch *availability.FetchError
	if errors.As(err, &fetch) {
		return &Error{Code: CodeCalendarFetchFailed, Message: fetch.Error()}
	}
	return &Error{Code: CodeCalendarFetchFailed, Message: err.Error()}
}
