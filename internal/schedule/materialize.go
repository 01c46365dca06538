package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

// DefaultCapacity applies when a class definition omits capacity.
const DefaultCapacity = 20

// ClassDefinition is the validated template a materialized occurrence is
// built from. Title and Date must be present before expansion is attempted;
// everything else has a usable zero value.
type ClassDefinition struct {
	ClassID    string
	Title      string
	Date       time.Time
	StartTime  Clock
	EndTime    Clock
	Instructor string
	Level      SkillLevel
	AgeGroup   string
	Capacity   int
}

// Materialize converts expanded dates plus class attributes into concrete
// occurrence records. Each occurrence gets a fresh id; occurrences of a
// recurring rule share one fresh parent recurrence id that equals none of
// their own ids. The transform has no side effects.
//
// An empty title is a validation error. An empty date slice is an error only
// for the one-off rule: a weekly rule with no selected days legitimately
// materializes to nothing.
func Materialize(def ClassDefinition, dates []time.Time, rule Rule) ([]models.Occurrence, error) {
	if def.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class title is required")
	}
	if len(dates) == 0 {
		if rule.Freq == FreqNone {
			return nil, appErrors.Clone(appErrors.ErrValidation, "no occurrence dates for one-off class")
		}
		return []models.Occurrence{}, nil
	}

	capacity := def.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	var parentID *string
	ruleText := ""
	if rule.Freq != FreqNone {
		id := uuid.NewString()
		parentID = &id
		ruleText = rule.RRule()
	}

	duration := DurationMinutes(def.StartTime, def.EndTime)
	color := def.Level.Color()

	occurrences := make([]models.Occurrence, 0, len(dates))
	for _, date := range dates {
		occurrences = append(occurrences, models.Occurrence{
			ID:                 uuid.NewString(),
			ClassID:            def.ClassID,
			Title:              def.Title,
			Start:              Combine(date, def.StartTime),
			End:                Combine(date, def.EndTime),
			Color:              color,
			ParentRecurrenceID: parentID,
			RecurrenceRule:     ruleText,
			Extended: models.OccurrenceAttributes{
				Instructor:      def.Instructor,
				Level:           def.Level.String(),
				AgeGroup:        def.AgeGroup,
				DurationMinutes: duration,
				Capacity:        capacity,
			},
		})
	}
	return occurrences, nil
}
