package availability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"meetbook/internal/models"
)

func rawEvent(start, end string) models.RemoteObject {
	raw := fmt.Sprintf("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nBEGIN:VEVENT\r\nUID:x\r\nDTSTART:%s\r\nDTEND:%s\r\nSUMMARY:busy\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n", start, end)
	return models.RemoteObject{Path: "/cal/x.ics", Raw: raw}
}

func TestProjectBusyFiltersToDay(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	objects := []models.RemoteObject{
		rawEvent("20250602T090000Z", "20250602T100000Z"), // on the day
		rawEvent("20250603T090000Z", "20250603T100000Z"), // next day
		rawEvent("20250601T230000Z", "20250602T010000Z"), // ends within the day
		rawEvent("20250601T000000Z", "20250604T000000Z"), // spans the day
	}

	busy := ProjectBusy(zap.NewNop(), day, objects)

	assert.Len(t, busy, 3)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), busy[0].Start)
}

func TestProjectBusySkipsUnusableObjects(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	objects := []models.RemoteObject{
		{Path: "/cal/junk.ics", Raw: "completely mangled payload"},
		{Path: "/cal/open.ics", Raw: "DTSTART:20250602T090000Z\r\nSUMMARY:no end\r\n"},
		rawEvent("20250602T140000Z", "20250602T150000Z"),
	}

	busy := ProjectBusy(zap.NewNop(), day, objects)

	// One malformed object never aborts the rest.
	assert.Len(t, busy, 1)
	assert.Equal(t, time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC), busy[0].Start)
}

func TestProjectBusyAcceptsFallbackPayloads(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	objects := []models.RemoteObject{
		{Path: "/cal/bare.ics", Raw: "DTSTART:20250602T090000Z\r\nDTEND:20250602T100000Z\r\n"},
	}

	busy := ProjectBusy(zap.NewNop(), day, objects)
	assert.Len(t, busy, 1)
}

func TestOverlapsDayBoundaries(t *testing.T) {
	dayStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	assert.True(t, overlapsDay(dayStart, dayStart.Add(time.Hour), dayStart, dayEnd))
	assert.True(t, overlapsDay(dayStart.Add(-time.Hour), dayStart, dayStart, dayEnd))
	assert.False(t, overlapsDay(dayEnd.Add(time.Millisecond), dayEnd.Add(time.Hour), dayStart, dayEnd))
}
