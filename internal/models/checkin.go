package models

import "time"

// Checkin records a member checking in to one class occurrence.
type Checkin struct {
	ID             string    `db:"id" json:"id"`
	GymID          string    `db:"gym_id" json:"gym_id"`
	ClassID        string    `db:"class_id" json:"class_id"`
	MemberID       string    `db:"member_id" json:"member_id"`
	OccurrenceDate time.Time `db:"occurrence_date" json:"occurrence_date"`
	CheckedInAt    time.Time `db:"checked_in_at" json:"checked_in_at"`
}

// CheckinDetail extends Checkin with member and class info for listings.
type CheckinDetail struct {
	Checkin
	MemberName string `db:"member_name" json:"member_name"`
	ClassTitle string `db:"class_title" json:"class_title"`
}

// CheckinFilter narrows down check-in listings.
type CheckinFilter struct {
	GymID     string
	ClassID   string
	MemberID  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}
