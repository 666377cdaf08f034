package availability

import (
	"time"

	"meetbook/internal/schedule"
)

// scanStep is the fixed probe granularity past a rejected candidate. It
// is independent of the requested slot length, so the scan re-anchors on
// the half-hour grid after a busy interval regardless of how long the
// slots themselves are.
const scanStep = 30 * time.Minute

// Slot is a free, fixed-length candidate meeting window.
type Slot struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots scans the day's working-hour ranges and returns the
// candidate slots that do not conflict with any busy interval, earliest
// first within each range, ranges in configured order. Accepted slots
// pack back to back; after a rejected candidate the scan advances by
// scanStep until it clears the conflict. It is a pure function of its
// inputs.
func GenerateSlots(day time.Time, ranges []schedule.HourRange, busy []BusyInterval, slotLen time.Duration) []Slot {
	d := day.UTC()
	var slots []Slot
	for _, r := range ranges {
		rangeStart := time.Date(d.Year(), d.Month(), d.Day(), r.Start, 0, 0, 0, time.UTC)
		rangeEnd := time.Date(d.Year(), d.Month(), d.Day(), r.End, 0, 0, 0, time.UTC)

		for start := rangeStart; !start.Add(slotLen).After(rangeEnd); {
			end := start.Add(slotLen)
			if conflicts(start, end, busy) {
				start = start.Add(scanStep)
				continue
			}
			slots = append(slots, Slot{Start: start, End: end})
			start = end
		}
	}
	return slots
}

// conflicts applies the three-way overlap test: the candidate start falls
// inside a busy interval, the candidate end falls inside one, or the
// candidate fully contains one. Membership is half-open on each side so
// a slot that exactly abuts a busy interval is accepted.
func conflicts(start, end time.Time, busy []BusyInterval) bool {
	for _, b := range busy {
		startInside := !start.Before(b.Start) && start.Before(b.End)
		endInside := end.After(b.Start) && !end.After(b.End)
		containsBusy := !start.After(b.Start) && !end.Before(b.End)
		if startInside || endInside || containsBusy {
			return true
		}
	}
	return false
}
