package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

// Frequency enumerates the supported recurrence frequencies.
type Frequency int

const (
	FreqNone Frequency = iota
	FreqDaily
	FreqWeekly
)

// Rule describes how a class definition repeats into occurrences.
//
//   - FreqNone: a single occurrence on the anchor date.
//   - FreqWeekly: every flagged weekday, indefinitely or until EndDate. An
//     empty day set is a valid rule that expands to zero occurrences.
//   - FreqDaily: every day from the anchor date through EndDate, or through
//     the caller's horizon when EndDate is nil.
type Rule struct {
	Freq Frequency
	// Days flags the selected weekdays for FreqWeekly, indexed 0 = Sunday.
	Days [7]bool
	// EndDate bounds FreqDaily and FreqWeekly rules (inclusive, date only).
	EndDate *time.Time
}

// Weekly builds a weekly rule from weekday indices (0 = Sunday).
func Weekly(days ...int) Rule {
	r := Rule{Freq: FreqWeekly}
	for _, d := range days {
		if d >= 0 && d < 7 {
			r.Days[d] = true
		}
	}
	return r
}

// Daily builds a daily rule with an optional inclusive end date.
func Daily(endDate *time.Time) Rule {
	return Rule{Freq: FreqDaily, EndDate: endDate}
}

// Equal reports structural equality of two rules. End dates compare by
// calendar date.
func (r Rule) Equal(other Rule) bool {
	if r.Freq != other.Freq || r.Days != other.Days {
		return false
	}
	if (r.EndDate == nil) != (other.EndDate == nil) {
		return false
	}
	if r.EndDate != nil && !DateOf(*r.EndDate).Equal(DateOf(*other.EndDate)) {
		return false
	}
	return true
}

// rruleWeekdays maps weekday index (0 = Sunday) to RFC 5545 weekdays.
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// RRule renders the rule as RFC 5545 RRULE text, the storage and interop
// format for persisted recurrence. FreqNone renders as the empty string.
func (r Rule) RRule() string {
	switch r.Freq {
	case FreqDaily:
		opt := rrule.ROption{Freq: rrule.DAILY}
		if r.EndDate != nil {
			opt.Until = DateOf(*r.EndDate)
		}
		return opt.RRuleString()
	case FreqWeekly:
		opt := rrule.ROption{Freq: rrule.WEEKLY}
		for i, set := range r.Days {
			if set {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[i])
			}
		}
		if r.EndDate != nil {
			opt.Until = DateOf(*r.EndDate)
		}
		return opt.RRuleString()
	default:
		return ""
	}
}

// RuleFromRRule parses stored RRULE text back into a Rule. Empty input is
// the one-off rule.
func RuleFromRRule(raw string) (Rule, error) {
	if raw == "" {
		return Rule{Freq: FreqNone}, nil
	}
	parsed, err := rrule.StrToRRule(raw)
	if err != nil {
		return Rule{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid recurrence rule %q", raw))
	}

	rule := Rule{}
	switch parsed.Options.Freq {
	case rrule.DAILY:
		rule.Freq = FreqDaily
	case rrule.WEEKLY:
		rule.Freq = FreqWeekly
		for _, wd := range parsed.Options.Byweekday {
			// rrule-go indexes weekdays from Monday; shift to Sunday-based.
			rule.Days[(wd.Day()+1)%7] = true
		}
	default:
		return Rule{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported recurrence frequency in %q", raw))
	}
	if !parsed.Options.Until.IsZero() {
		end := DateOf(parsed.Options.Until)
		rule.EndDate = &end
	}
	return rule, nil
}
