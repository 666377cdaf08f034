// Package availability turns configured working hours and freshly
// fetched remote calendar events into bookable time windows.
package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meetbook/internal/models"
	"meetbook/internal/schedule"
)

// ObjectSource fetches the raw calendar objects relevant to one day from
// a remote store. Implementations may internally retry with a broader,
// unscoped query when a day-scoped query fails or comes back empty.
type ObjectSource interface {
	FetchObjectsForDay(ctx context.Context, day time.Time) ([]models.RemoteObject, error)
}

// Service computes available slots for a day. All state it reads is
// configuration fixed at construction; every call works on request-scoped
// data, so concurrent use needs no locking.
type Service struct {
	logger  *zap.Logger
	week    schedule.Week
	allowed schedule.SlotLengths
	source  ObjectSource
}

// NewService creates an availability service over the given schedule and
// remote object source.
func NewService(logger *zap.Logger, week schedule.Week, allowed schedule.SlotLengths, source ObjectSource) *Service {
	return &Service{logger: logger, week: week, allowed: allowed, source: source}
}

// AvailableSlots returns the ordered free slots of the given length on
// the given day. A weekday with no configured working hours yields an
// empty result without contacting the remote store. Fetch failures are
// surfaced as *FetchError; a disallowed length as *InvalidSlotLengthError.
func (s *Service) AvailableSlots(ctx context.Context, day time.Time, slotLength float64) ([]Slot, error) {
	if !s.allowed.Contains(slotLength) {
		return nil, &InvalidSlotLengthError{Length: slotLength}
	}

	ranges := s.week[day.UTC().Weekday()]
	if len(ranges) == 0 {
		return nil, nil
	}

	objects, err := s.source.FetchObjectsForDay(ctx, day)
	if err != nil {
		s.logger.Error("remote calendar fetch failed",
			zap.Time("day", day), zap.Error(err))
		return nil, &FetchError{Message: err.Error()}
	}

	busy := ProjectBusy(s.logger, day, objects)
	slots := GenerateSlots(day, ranges, busy, schedule.Duration(slotLength))

	s.logger.Debug("computed availability",
		zap.Time("day", day),
		zap.Float64("slotLength", slotLength),
		zap.Int("objects", len(objects)),
		zap.Int("busy", len(busy)),
		zap.Int("slots", len(slots)))
	return slots, nil
}

// MultiSource merges a primary source with best-effort secondary ones.
// A primary failure fails the fetch; a secondary failure is logged and
// its objects are simply absent from the result.
type MultiSource struct {
	Logger    *zap.Logger
	Primary   ObjectSource
	Secondary []ObjectSource
}

func (m *MultiSource) FetchObjectsForDay(ctx context.Context, day time.Time) ([]models.RemoteObject, error) {
	objects, err := m.Primary.FetchObjectsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	for _, src := range m.Secondary {
		extra, err := src.FetchObjectsForDay(ctx, day)
		if err != nil {
			m.Logger.Warn("secondary calendar source failed", zap.Error(err))
			continue
		}
		objects = append(objects, extra...)
	}
	return objects, nil
}
