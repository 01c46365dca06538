package dto

// CheckinRequest is the kiosk payload recording a member's attendance at one
// class occurrence.
type CheckinRequest struct {
	MemberID       string `json:"member_id" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	OccurrenceDate string `json:"occurrence_date" validate:"required"`
}
