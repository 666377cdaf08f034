package models

import "time"

// Event is the calendar write payload for a booked meeting.
// This is an internal representation, independent of any specific calendar backend.
type Event struct {
	UID         string    // iCalendar UID of the created event
	Title       string    // Summary line of the event
	Description string    // Detailed description, may be empty
	StartTime   time.Time // Start of the meeting
	EndTime     time.Time // End of the meeting
	Organizer   string    // Organizer's email
	Attendees   []string  // Participant emails, invited as need-response entries
}

// RemoteObject is one raw calendar object fetched from a remote store.
// The payload is kept as unparsed text: remote producers are frequently
// non-compliant, so decoding is deferred to the extraction layer, which
// has a best-effort fallback path for malformed input.
type RemoteObject struct {
	Path string // Object path or identifier on the remote store
	Raw  string // Raw iCalendar text as fetched
}
