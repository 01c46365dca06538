package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandNoneReturnsAnchorOnly(t *testing.T) {
	for _, anchor := range []time.Time{
		day(2025, 4, 16),
		day(2024, 2, 29),
		day(2025, 12, 31),
	} {
		dates := Expand(anchor, Rule{Freq: FreqNone}, 14)
		require.Len(t, dates, 1)
		assert.Equal(t, anchor, dates[0])
	}
}

func TestExpandNoneNormalizesToDate(t *testing.T) {
	anchor := time.Date(2025, 4, 16, 18, 30, 0, 0, time.UTC)
	dates := Expand(anchor, Rule{Freq: FreqNone}, 14)
	require.Len(t, dates, 1)
	assert.Equal(t, day(2025, 4, 16), dates[0])
}

func TestExpandWeeklyEmptyDaySetIsValid(t *testing.T) {
	dates := Expand(day(2025, 4, 16), Weekly(), 14)
	assert.Empty(t, dates)
}

func TestExpandWeeklyAnchorWeekdayStartsAtAnchor(t *testing.T) {
	anchor := day(2025, 4, 16) // Wednesday
	dates := Expand(anchor, Weekly(WeekdayIndex(anchor)), 14)
	require.NotEmpty(t, dates)
	assert.Equal(t, anchor, dates[0])
}

func TestExpandWeeklyMondayWednesdayScenario(t *testing.T) {
	// Base date Wednesday 2025-04-16, weekly on Monday and Wednesday,
	// 14-day horizon.
	anchor := day(2025, 4, 16)
	dates := Expand(anchor, Weekly(1, 3), 14)

	assert.Contains(t, dates, day(2025, 4, 16))
	assert.Contains(t, dates, day(2025, 4, 21))
	assert.Contains(t, dates, day(2025, 4, 23))
	assert.NotContains(t, dates, day(2025, 4, 18))

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i-1].Before(dates[i]), "dates must be sorted ascending")
	}
}

func TestExpandWeeklyRespectsEndDate(t *testing.T) {
	anchor := day(2025, 4, 16)
	end := day(2025, 4, 22)
	rule := Weekly(1, 3)
	rule.EndDate = &end

	dates := Expand(anchor, rule, 28)
	assert.Equal(t, []time.Time{day(2025, 4, 16), day(2025, 4, 21)}, dates)
}

func TestExpandDailyBoundedByEndDate(t *testing.T) {
	anchor := day(2025, 4, 16)
	end := day(2025, 4, 18)
	dates := Expand(anchor, Daily(&end), 14)
	assert.Equal(t, []time.Time{day(2025, 4, 16), day(2025, 4, 17), day(2025, 4, 18)}, dates)
}

func TestExpandDailyUnboundedUsesHorizon(t *testing.T) {
	anchor := day(2025, 4, 16)
	dates := Expand(anchor, Daily(nil), 14)
	require.Len(t, dates, 15)
	assert.Equal(t, anchor, dates[0])
	assert.Equal(t, day(2025, 4, 30), dates[len(dates)-1])
}

func TestExpandDailyReversedEndDateDegradesToAnchor(t *testing.T) {
	anchor := day(2025, 4, 16)
	end := day(2025, 4, 10)
	dates := Expand(anchor, Daily(&end), 14)
	assert.Equal(t, []time.Time{anchor}, dates)
}

func TestExpandDefaultsHorizon(t *testing.T) {
	anchor := day(2025, 4, 16)
	dates := Expand(anchor, Daily(nil), 0)
	assert.Len(t, dates, DefaultHorizonDays+1)
}

func TestExpandIsDeterministic(t *testing.T) {
	anchor := day(2025, 4, 16)
	rule := Weekly(1, 3, 5)
	first := Expand(anchor, rule, 21)
	second := Expand(anchor, rule, 21)
	assert.Equal(t, first, second)
}
