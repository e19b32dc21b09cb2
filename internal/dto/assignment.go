package dto

import "github.com/noah-isme/sma-portal/internal/models"

// Deadline states shown as a badge.
const (
	DeadlineOverdue = "overdue"
	DeadlineToday   = "today"
	DeadlineSoon    = "soon"
	DeadlineOK      = "ok"
	DeadlineNone    = "none"
)

// AssignmentItem is an assignment decorated for display.
type AssignmentItem struct {
	models.Assignment
	DeadlineDisplay string `json:"deadline_display"`
	DaysRemaining   *int   `json:"days_remaining,omitempty"`
	DeadlineStatus  string `json:"deadline_status"`
}

// AssignmentsPage is rendered by GET /assignments.
type AssignmentsPage struct {
	Assignments  []AssignmentItem `json:"assignments"`
	Groups       []models.Group   `json:"groups,omitempty"`
	Capabilities Capabilities     `json:"capabilities"`
}

// AssignmentDetail is rendered by GET /assignments/:id.
type AssignmentDetail struct {
	Assignment   AssignmentItem `json:"assignment"`
	Capabilities Capabilities   `json:"capabilities"`
}
