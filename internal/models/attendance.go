package models

import "strings"

// AttendanceStatus is one of present, absent, late, excused.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// NormalizeStatus lower-cases and trims a status string.
func NormalizeStatus(raw string) AttendanceStatus {
	return AttendanceStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// AttendanceRecord is one student's attendance for one class.
type AttendanceRecord struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name,omitempty"`
	ScheduleID  string           `json:"schedule_id"`
	Status      AttendanceStatus `json:"status"`
	Date        string           `json:"date,omitempty"`
	Subject     string           `json:"subject,omitempty"`
	StartTime   string           `json:"start_time,omitempty"`
	EndTime     string           `json:"end_time,omitempty"`
}

// AttendanceQuery filters GET /attendance.
type AttendanceQuery struct {
	ScheduleID string
	StudentID  string
	DateFrom   string
	DateTo     string
}

// AttendanceInput creates a single record.
type AttendanceInput struct {
	ScheduleID string           `json:"schedule_id" form:"schedule_id" validate:"required"`
	StudentID  string           `json:"student_id" form:"student_id" validate:"required"`
	Status     AttendanceStatus `json:"status" form:"status" validate:"required,oneof=present absent late excused"`
}

// AttendanceStatusUpdate changes the status of an existing record.
type AttendanceStatusUpdate struct {
	Status AttendanceStatus `json:"status" form:"status" validate:"required,oneof=present absent late excused"`
}

// BulkAttendance is the POST /attendance/bulk body.
type BulkAttendance struct {
	ScheduleID     string                      `json:"schedule_id"`
	AttendanceData map[string]AttendanceStatus `json:"attendance_data"`
}

// StudentAttendance is a roster row for marking attendance.
type StudentAttendance struct {
	StudentID    string           `json:"student_id"`
	StudentName  string           `json:"student_name"`
	Email        string           `json:"email,omitempty"`
	ScheduleID   string           `json:"schedule_id,omitempty"`
	AttendanceID string           `json:"attendance_id,omitempty"`
	Status       AttendanceStatus `json:"status"`
}

// RosterRow is the backend students_by_schedule element.
type RosterRow struct {
	StudentID        string `json:"student_id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	AttendanceStatus string `json:"attendance_status"`
	AttendanceID     string `json:"attendance_id"`
}

// AttendanceStats is the aggregate served by /attendance/stats.
type AttendanceStats struct {
	TotalClasses         int     `json:"total_classes"`
	PresentCount         int     `json:"present_count"`
	AbsentCount          int     `json:"absent_count"`
	LateCount            int     `json:"late_count"`
	ExcusedCount         int     `json:"excused_count"`
	PresentPercentage    float64 `json:"present_percentage"`
	AbsentPercentage     float64 `json:"absent_percentage"`
	LatePercentage       float64 `json:"late_percentage"`
	ExcusedPercentage    float64 `json:"excused_percentage"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	MissedHours          float64 `json:"missed_hours"`
}

const (
	absentMissedHours = 2.0
	lateMissedHours   = 1.0
)

// ComputeAttendanceStats derives the aggregate from records the same way the backend does:
// present and excused count as attended, absences cost two hours and late arrivals one.
// Records with an unknown status are ignored.
func ComputeAttendanceStats(records []AttendanceRecord) AttendanceStats {
	var s AttendanceStats
	for _, r := range records {
		switch NormalizeStatus(string(r.Status)) {
		case StatusPresent:
			s.PresentCount++
		case StatusAbsent:
			s.AbsentCount++
			s.MissedHours += absentMissedHours
		case StatusLate:
			s.LateCount++
			s.MissedHours += lateMissedHours
		case StatusExcused:
			s.ExcusedCount++
		default:
			continue
		}
		s.TotalClasses++
	}
	if s.TotalClasses == 0 {
		return s
	}
	total := float64(s.TotalClasses)
	s.PresentPercentage = float64(s.PresentCount) / total * 100
	s.AbsentPercentage = float64(s.AbsentCount) / total * 100
	s.LatePercentage = float64(s.LateCount) / total * 100
	s.ExcusedPercentage = float64(s.ExcusedCount) / total * 100
	s.AttendancePercentage = float64(s.PresentCount+s.ExcusedCount) / total * 100
	return s
}
