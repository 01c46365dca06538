package models

import "time"

// OccurrenceAttributes carries the class attributes attached to every
// concrete occurrence.
type OccurrenceAttributes struct {
	Instructor      string `json:"instructor"`
	Level           string `json:"level"`
	AgeGroup        string `json:"age_group"`
	DurationMinutes int    `json:"duration_minutes"`
	Capacity        int    `json:"capacity"`
}

// Occurrence is one concrete scheduled instance of a class on a specific
// calendar date/time. Occurrences derived from the same recurring rule share
// a ParentRecurrenceID distinct from every occurrence's own id.
type Occurrence struct {
	ID                 string               `json:"id"`
	ClassID            string               `json:"class_id,omitempty"`
	Title              string               `json:"title"`
	Start              time.Time            `json:"start"`
	End                time.Time            `json:"end"`
	Color              string               `json:"color"`
	ParentRecurrenceID *string              `json:"parent_recurrence_id,omitempty"`
	RecurrenceRule     string               `json:"recurrence_rule,omitempty"`
	Extended           OccurrenceAttributes `json:"extended"`
}

// IsRecurring reports whether the occurrence belongs to a recurring series.
func (o Occurrence) IsRecurring() bool {
	return o.ParentRecurrenceID != nil && *o.ParentRecurrenceID != ""
}
