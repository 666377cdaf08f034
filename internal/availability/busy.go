package availability

import (
	"time"

	"go.uber.org/zap"

	"meetbook/internal/ics"
	"meetbook/internal/models"
)

// BusyInterval is a time range occupied by an existing remote event.
// Intervals are computed fresh per request and never persisted.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// dayWindow returns the target day's boundaries, 00:00:00.000 through
// 23:59:59.999, in UTC.
func dayWindow(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// ProjectBusy filters raw calendar objects down to the busy intervals
// that overlap the target day. Unusable or non-overlapping events are
// dropped; a failure on one object never aborts the rest.
func ProjectBusy(logger *zap.Logger, day time.Time, objects []models.RemoteObject) []BusyInterval {
	dayStart, dayEnd := dayWindow(day)

	var busy []BusyInterval
	for _, obj := range objects {
		func(obj models.RemoteObject) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic processing calendar object",
						zap.String("path", obj.Path), zap.Any("recover", r))
				}
			}()

			desc, fallback := ics.Extract(obj.Raw)
			if fallback {
				logger.Debug("extraction fallback used", zap.String("path", obj.Path))
			}
			if !desc.Usable() {
				logger.Debug("skipping event without usable start/end",
					zap.String("path", obj.Path), zap.String("summary", desc.Summary))
				return
			}

			if !overlapsDay(*desc.Start, *desc.End, dayStart, dayEnd) {
				return
			}
			busy = append(busy, BusyInterval{Start: *desc.Start, End: *desc.End})
		}(obj)
	}
	return busy
}

// overlapsDay reports whether an event overlaps the day window: its start
// falls within the window, its end falls within the window, or it spans
// the window entirely.
func overlapsDay(start, end, dayStart, dayEnd time.Time) bool {
	startInside := !start.Before(dayStart) && !start.After(dayEnd)
	endInside := !end.Before(dayStart) && !end.After(dayEnd)
	spans := !start.After(dayStart) && !end.Before(dayEnd)
	return startInside || endInside || spans
}
