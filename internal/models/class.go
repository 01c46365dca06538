package models

import "time"

// GymClass is the persisted class template. For recurring classes the row
// stores the recurrence rule itself (RFC 5545 RRULE text), never a
// materialized occurrence list; occurrences are expanded on read.
type GymClass struct {
	ID                 string    `db:"id" json:"id"`
	GymID              string    `db:"gym_id" json:"gym_id"`
	Title              string    `db:"title" json:"title"`
	Date               time.Time `db:"date" json:"date"`
	StartTime          string    `db:"start_time" json:"start_time"`
	EndTime            string    `db:"end_time" json:"end_time"`
	Instructor         string    `db:"instructor" json:"instructor"`
	Level              string    `db:"level" json:"level"`
	AgeGroup           string    `db:"age_group" json:"age_group"`
	Capacity           int       `db:"capacity" json:"capacity"`
	IsRecurring        bool      `db:"is_recurring" json:"is_recurring"`
	RecurrenceRule     string    `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	ParentRecurrenceID *string   `db:"parent_recurrence_id" json:"parent_recurrence_id,omitempty"`
	CreatedBy          string    `db:"created_by" json:"created_by"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter narrows down stored classes.
type ClassFilter struct {
	GymID     string
	StartDate *time.Time
	EndDate   *time.Time
	Level     string
	Page      int
	PageSize  int
}
