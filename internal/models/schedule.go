package models

// ScheduleEntry is one class slot.
type ScheduleEntry struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Room        string `json:"room"`
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name,omitempty"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
}

// ScheduleInput is the create/update payload.
type ScheduleInput struct {
	Subject   string `json:"subject" form:"subject" validate:"required"`
	Date      string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" form:"start_time" validate:"required"`
	EndTime   string `json:"end_time" form:"end_time" validate:"required"`
	Room      string `json:"room" form:"room" validate:"required"`
	GroupID   string `json:"group_id" form:"group_id" validate:"required"`
	TeacherID string `json:"teacher_id" form:"teacher_id"`
}

// ScheduleQuery filters GET /schedule by date range.
type ScheduleQuery struct {
	StartDate string
	EndDate   string
}

// Weekdays accepted by /schedule/day/{day}.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// IsWeekday reports whether day is a Monday–Saturday name.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
