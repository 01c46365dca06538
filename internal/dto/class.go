package dto

// CreateClassRequest is the wire payload for creating a class. The recurrence
// flags mirror the historical client contract: is_recurring plus one flag per
// weekday (all seven set means a daily class), with an optional inclusive end
// date. Dates are YYYY-MM-DD, times are HH:MM.
type CreateClassRequest struct {
	GymID             string `json:"gym_id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Date              string `json:"date" validate:"required"`
	StartTime         string `json:"start_time" validate:"required"`
	EndTime           string `json:"end_time" validate:"required"`
	Instructor        string `json:"instructor"`
	Level             string `json:"level"`
	AgeGroup          string `json:"age_group"`
	Capacity          int    `json:"capacity"`
	IsRecurring       bool   `json:"is_recurring"`
	RecurrsMonday     bool   `json:"recurrs_monday"`
	RecurrsTuesday    bool   `json:"recurrs_tuesday"`
	RecurrsWednesday  bool   `json:"recurrs_wednesday"`
	RecurrsThursday   bool   `json:"recurrs_thursday"`
	RecurrsFriday     bool   `json:"recurrs_friday"`
	RecurrsSaturday   bool   `json:"recurrs_saturday"`
	RecurrsSunday     bool   `json:"recurrs_sunday"`
	RecurrenceEndDate string `json:"recurrence_end_date,omitempty"`
}

// DayFlags returns the weekday selection indexed 0 = Sunday.
func (r CreateClassRequest) DayFlags() [7]bool {
	return [7]bool{
		r.RecurrsSunday,
		r.RecurrsMonday,
		r.RecurrsTuesday,
		r.RecurrsWednesday,
		r.RecurrsThursday,
		r.RecurrsFriday,
		r.RecurrsSaturday,
	}
}

// AllDays reports whether every weekday flag is set, the wire encoding for a
// daily class.
func (r CreateClassRequest) AllDays() bool {
	for _, set := range r.DayFlags() {
		if !set {
			return false
		}
	}
	return true
}
