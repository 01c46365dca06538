package models

import "time"

// Member represents a gym member eligible for class check-in.
type Member struct {
	ID             string     `db:"id" json:"id"`
	GymID          string     `db:"gym_id" json:"gym_id"`
	FullName       string     `db:"full_name" json:"full_name"`
	Email          string     `db:"email" json:"email"`
	Phone          string     `db:"phone" json:"phone"`
	Active         bool       `db:"active" json:"active"`
	WaiverSignedAt *time.Time `db:"waiver_signed_at" json:"waiver_signed_at,omitempty"`
	JoinedAt       time.Time  `db:"joined_at" json:"joined_at"`
}
