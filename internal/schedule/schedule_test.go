package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeek(t *testing.T) {
	week := ParseWeek(map[string]string{
		"MON": "8-12,14-18",
		"TUE": "9-17",
		"SAT": "",
	})

	assert.Equal(t, []HourRange{{8, 12}, {14, 18}}, week[time.Monday])
	assert.Equal(t, []HourRange{{9, 17}}, week[time.Tuesday])
	assert.Empty(t, week[time.Saturday])
	assert.Empty(t, week[time.Sunday])
}

func TestParseWeekKeepsRangesAsConfigured(t *testing.T) {
	// Out-of-order and overlapping ranges are preserved, not normalized.
	week := ParseWeek(map[string]string{"WED": "14-18,8-15"})
	assert.Equal(t, []HourRange{{14, 18}, {8, 15}}, week[time.Wednesday])
}

func TestParseWeekDropsMalformedTokens(t *testing.T) {
	week := ParseWeek(map[string]string{"FRI": "8-12,garbage,14"})
	assert.Equal(t, []HourRange{{8, 12}}, week[time.Friday])
}

func TestParseSlotLengths(t *testing.T) {
	assert.Equal(t, SlotLengths{0.5, 1}, ParseSlotLengths("0.5,1"))
	assert.Equal(t, SlotLengths{1}, ParseSlotLengths(""), "empty defaults to one hour")
}

func TestParseSlotLengthsBadTokenNeverMatches(t *testing.T) {
	lengths := ParseSlotLengths("0.5,banana")
	assert.True(t, math.IsNaN(float64(lengths[1])))
	assert.True(t, lengths.Contains(0.5))
	assert.False(t, lengths.Contains(1))
	assert.False(t, lengths.Contains(math.NaN()))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Hour, Duration(1))
	assert.Equal(t, 30*time.Minute, Duration(0.5))
	assert.Equal(t, 90*time.Minute, Duration(1.5))
}
