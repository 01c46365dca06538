package schedule

import (
	"sort"
	"time"
)

// DefaultHorizonDays bounds client-preview expansion of otherwise unbounded
// rules. The persisted rule, not any expanded list, remains the source of
// truth for the series.
const DefaultHorizonDays = 14

// Expand returns the sorted, duplicate-free calendar dates on which the rule
// places an occurrence, anchored at base and bounded by horizonDays. The
// result is deterministic for identical inputs.
//
//   - FreqNone yields exactly the anchor date.
//   - FreqWeekly yields, per flagged weekday, the first date on or after the
//     anchor and then every 7 days within the horizon. No flagged days means
//     no occurrences; that is valid, not an error.
//   - FreqDaily yields every date from the anchor through the earlier of the
//     rule's end date and the horizon. An end date before the anchor
//     degrades to the anchor date alone.
func Expand(base time.Time, rule Rule, horizonDays int) []time.Time {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	anchor := DateOf(base)
	horizonEnd := anchor.AddDate(0, 0, horizonDays)

	switch rule.Freq {
	case FreqDaily:
		return expandDaily(anchor, rule.EndDate, horizonEnd)
	case FreqWeekly:
		return expandWeekly(anchor, rule, horizonEnd)
	default:
		return []time.Time{anchor}
	}
}

func expandDaily(anchor time.Time, endDate *time.Time, horizonEnd time.Time) []time.Time {
	end := horizonEnd
	if endDate != nil {
		bound := DateOf(*endDate)
		if bound.Before(anchor) {
			// Reversed bound degrades to the anchor alone.
			return []time.Time{anchor}
		}
		if bound.Before(end) {
			end = bound
		}
	}

	var dates []time.Time
	for d := anchor; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func expandWeekly(anchor time.Time, rule Rule, horizonEnd time.Time) []time.Time {
	end := horizonEnd
	if rule.EndDate != nil {
		if bound := DateOf(*rule.EndDate); bound.Before(end) {
			end = bound
		}
	}

	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	anchorWeekday := WeekdayIndex(anchor)
	for weekday := 0; weekday < 7; weekday++ {
		if !rule.Days[weekday] {
			continue
		}
		first := anchor.AddDate(0, 0, DayDifference(anchorWeekday, weekday))
		for d := first; !d.After(end); d = d.AddDate(0, 0, 7) {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
