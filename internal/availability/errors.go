package availability

import "fmt"

// InvalidSlotLengthError is returned when a requested slot length is not
// in the configured allowed set.
type InvalidSlotLengthError struct {
	Length float64
}

func (e *InvalidSlotLengthError) Error() string {
	return fmt.Sprintf("slot length %g is not allowed", e.Length)
}

// FetchError wraps a remote calendar fetch failure. It carries only the
// originating error's message so the raw transport error type never
// crosses the service boundary.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string {
	return "calendar fetch failed: " + e.Message
}
