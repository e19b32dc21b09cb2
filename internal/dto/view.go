package dto

import "github.com/noah-isme/sma-portal/internal/models"

// Attendance page tabs.
const (
	TabToday   = "today"
	TabTeacher = "teacher"
	TabStudent = "student"
)

// Capabilities are the affordances a role gets across the views.
type Capabilities struct {
	Role                 models.UserRole `json:"role"`
	ManageSchedule       bool            `json:"manage_schedule"`
	ManageAssignments    bool            `json:"manage_assignments"`
	SubmitAssignments    bool            `json:"submit_assignments"`
	MarkAttendance       bool            `json:"mark_attendance"`
	ViewPersonalStats    bool            `json:"view_personal_stats"`
	AttendanceTabs       []string        `json:"attendance_tabs"`
	DefaultAttendanceTab string          `json:"default_attendance_tab"`
}

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Method string `json:"method,omitempty"`
}

// NavMenu is the session-aware navigation shell.
type NavMenu struct {
	Authenticated bool      `json:"authenticated"`
	DisplayName   string    `json:"display_name,omitempty"`
	Role          string    `json:"role,omitempty"`
	Items         []NavItem `json:"items"`
}

// LoginPage is rendered by GET /login.
type LoginPage struct {
	RedirectURL string `json:"redirect_url,omitempty"`
	Registered  bool   `json:"registered,omitempty"`
}

// LoginResult is returned after a successful POST /login.
type LoginResult struct {
	User        models.User `json:"user"`
	RedirectURL string      `json:"redirect_url"`
}

// ProfilePage is rendered by GET /profile.
type ProfilePage struct {
	User         models.User  `json:"user"`
	Capabilities Capabilities `json:"capabilities"`
}
