package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 5}, c)
	assert.Equal(t, "09:05", c.String())

	c, err = ParseClock("18:30:00")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 18, Minute: 30}, c)
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "9", "25:00", "12:60", "ab:cd", "12-30"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestDurationMinutes(t *testing.T) {
	start, err := ParseClock("09:00")
	require.NoError(t, err)
	end, err := ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, DurationMinutes(start, end))
}

func TestDurationMinutesWrapsModulo24h(t *testing.T) {
	start, _ := ParseClock("22:00")
	end, _ := ParseClock("06:00")
	assert.Equal(t, 480, DurationMinutes(start, end))

	same, _ := ParseClock("07:15")
	assert.Equal(t, 0, DurationMinutes(same, same))
}

func TestDayDifferenceRange(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 14; offset++ {
		d := base.AddDate(0, 0, offset)
		for w := 0; w < 7; w++ {
			diff := DayDifference(WeekdayIndex(d), w)
			require.GreaterOrEqual(t, diff, 0)
			require.LessOrEqual(t, diff, 6)
			assert.Equal(t, w, WeekdayIndex(d.AddDate(0, 0, diff)))
		}
	}
}

func TestWeekdayIndexSundayZero(t *testing.T) {
	sunday := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, WeekdayIndex(sunday))
	assert.Equal(t, 3, WeekdayIndex(sunday.AddDate(0, 0, 3)))
}

func TestCombine(t *testing.T) {
	date := time.Date(2025, 4, 16, 17, 45, 12, 0, time.UTC)
	c := Clock{Hour: 6, Minute: 15}
	combined := Combine(DateOf(date), c)
	assert.Equal(t, time.Date(2025, 4, 16, 6, 15, 0, 0, time.UTC), combined)
}
