package dto

import "github.com/noah-isme/sma-portal/internal/models"

// Week selectors.
const (
	WeekCurrent = "current"
	WeekNext    = "next"
)

// DayTab is one day of the two-week strip.
type DayTab struct {
	Day      string `json:"day"`
	Date     string `json:"date"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ScheduleItem is a schedule entry decorated for display.
type ScheduleItem struct {
	models.ScheduleEntry
	ClassNumber  int    `json:"class_number"`
	TeacherLabel string `json:"teacher_label"`
	GroupLabel   string `json:"group_label"`
	RoomLabel    string `json:"room_label"`
}

// SchedulePage is rendered by GET /schedule.
type SchedulePage struct {
	Week         string         `json:"week"`
	Day          string         `json:"day"`
	Date         string         `json:"date"`
	CurrentWeek  []DayTab       `json:"current_week"`
	NextWeek     []DayTab       `json:"next_week"`
	Entries      []ScheduleItem `json:"entries"`
	Capabilities Capabilities   `json:"capabilities"`
}
