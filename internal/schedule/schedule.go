// Package schedule holds the weekly working-hours configuration and the
// set of slot lengths a caller is allowed to request.
package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// HourRange is one configured working window on a 24-hour clock,
// start inclusive, end exclusive. Ranges are used exactly as configured:
// they are not sorted or merged, so overlapping ranges produce
// overlapping candidate slots downstream.
type HourRange struct {
	Start int
	End   int
}

// Week maps a weekday to its configured working windows. A weekday with
// no entry (or an empty slice) offers no availability at all.
type Week map[time.Weekday][]HourRange

// SlotLengths is the set of slot durations, in hours, a caller may request.
type SlotLengths []float64

// weekdayKeys is the order and spelling of the per-weekday configuration keys.
var weekdayKeys = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// ParseWeek builds a Week from raw per-weekday strings keyed MON..SUN,
// each of the form "H-H,H-H,..." (comma-separated integer hour ranges).
// An empty or missing string yields no ranges for that day. Hour bounds
// are not validated here; a range that can never hold any slot simply
// never produces one.
func ParseWeek(raw map[string]string) Week {
	week := make(Week, len(weekdayKeys))
	for key, day := range weekdayKeys {
		week[day] = parseRanges(raw[key])
	}
	return week
}

// parseRanges parses "8-12,14-18" into hour ranges. Tokens that do not
// split into two integers are dropped.
func parseRanges(s string) []HourRange {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var ranges []HourRange
	for _, tok := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(tok), "-", 2)
		if len(parts) != 2 {
			continue
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		ranges = append(ranges, HourRange{Start: start, End: end})
	}
	return ranges
}

// ParseSlotLengths parses a comma-separated list of slot lengths in
// hours, e.g. "0.5,1". An empty string defaults to a single allowed
// length of one hour. Unparseable tokens become NaN entries, which no
// requested length can ever match.
func ParseSlotLengths(s string) SlotLengths {
	s = strings.TrimSpace(s)
	if s == "" {
		return SlotLengths{1}
	}
	var lengths SlotLengths
	for _, tok := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			v = math.NaN()
		}
		lengths = append(lengths, v)
	}
	return lengths
}

// Contains reports whether the requested length is one of the allowed ones.
func (l SlotLengths) Contains(length float64) bool {
	for _, v := range l {
		if v == length {
			return true
		}
	}
	return false
}

// Duration converts a slot length in hours to a time.Duration. This is
// the single conversion point shared by slot generation and the booking
// check, so equal lengths always compare equal as durations.
func Duration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
