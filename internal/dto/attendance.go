package dto

import "github.com/noah-isme/sma-portal/internal/models"

// AttendancePage is rendered by GET /attendance. Students get records and stats; teachers and
// admins get the management data.
type AttendancePage struct {
	ActiveTab     string                     `json:"active_tab"`
	Capabilities  Capabilities               `json:"capabilities"`
	Records       []models.AttendanceRecord  `json:"records,omitempty"`
	Stats         *models.AttendanceStats    `json:"stats,omitempty"`
	TodaySchedule []ScheduleItem             `json:"today_schedule,omitempty"`
	Groups        []models.Group             `json:"groups,omitempty"`
	Schedule      []ScheduleItem             `json:"schedule,omitempty"`
	SelectedGroup string                     `json:"selected_group,omitempty"`
	Roster        []models.StudentAttendance `json:"roster,omitempty"`
	SelectedSlot  string                     `json:"selected_schedule,omitempty"`
	Warnings      []string                   `json:"warnings,omitempty"`
}

// RosterSource names where a roster came from.
const (
	RosterFromSchedule   = "students_by_schedule"
	RosterFromAttendance = "attendance"
	RosterFromGroup      = "group"
)

// Roster is the list of students to mark for one schedule slot.
type Roster struct {
	ScheduleID string                     `json:"schedule_id"`
	Source     string                     `json:"source"`
	Students   []models.StudentAttendance `json:"students"`
}

// BulkAttendanceRequest is the roster form posted back by a teacher.
type BulkAttendanceRequest struct {
	AttendanceData map[string]string `json:"attendance_data"`
}

// BulkAttendanceResult is the outcome of a bulk save plus the refreshed roster.
type BulkAttendanceResult struct {
	Message string `json:"message"`
	Roster  Roster `json:"roster"`
}
