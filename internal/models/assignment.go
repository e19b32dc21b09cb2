package models

import (
	"encoding/json"
	"time"
)

// Assignment is the backend assignment resource. Deadline is the canonical field; a legacy
// due_date is accepted when decoding and folded into Deadline.
type Assignment struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Deadline    string   `json:"deadline,omitempty"`
	GroupID     string   `json:"group_id"`
	GroupName   string   `json:"group_name,omitempty"`
	TeacherID   string   `json:"teacher_id"`
	TeacherName string   `json:"teacher_name,omitempty"`
	FileIDs     []string `json:"file_ids,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

func (a *Assignment) UnmarshalJSON(data []byte) error {
	type plain Assignment
	aux := struct {
		*plain
		DueDate string `json:"due_date"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.Deadline == "" {
		a.Deadline = aux.DueDate
	}
	return nil
}

// AssignmentInput is the create/update payload sent to the backend.
type AssignmentInput struct {
	Title       string `json:"title,omitempty" form:"title" validate:"required,max=255"`
	Description string `json:"description,omitempty" form:"description"`
	Deadline    string `json:"deadline,omitempty" form:"deadline"`
	GroupID     string `json:"group_id,omitempty" form:"group_id"`
	TeacherID   string `json:"teacher_id,omitempty" form:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty" form:"teacher_name"`
}

func (in *AssignmentInput) UnmarshalJSON(data []byte) error {
	type plain AssignmentInput
	aux := struct {
		*plain
		DueDate string `json:"due_date"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if in.Deadline == "" {
		in.Deadline = aux.DueDate
	}
	return nil
}

// Submission is the student submission payload.
type Submission struct {
	Content string   `json:"content,omitempty" form:"content"`
	FileIDs []string `json:"file_ids,omitempty" form:"file_ids"`
}

// FileInfo describes an uploaded assignment file.
type FileInfo struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	UploadDate  string `json:"upload_date,omitempty"`
}

// LocalOverride holds the fields the backend was seen to drop for one assignment.
type LocalOverride struct {
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	Deadline     string    `json:"deadline,omitempty" db:"deadline"`
	TeacherName  string    `json:"teacher_name,omitempty" db:"teacher_name"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Empty reports whether the override carries no field.
func (o LocalOverride) Empty() bool {
	return o.Deadline == "" && o.TeacherName == ""
}

// UnmarshalJSON accepts records written with the older due_date / updatedAt keys.
func (o *LocalOverride) UnmarshalJSON(data []byte) error {
	type plain LocalOverride
	aux := struct {
		*plain
		DueDate       string     `json:"due_date"`
		LegacyUpdated *time.Time `json:"updatedAt"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if o.Deadline == "" {
		o.Deadline = aux.DueDate
	}
	if o.UpdatedAt.IsZero() && aux.LegacyUpdated != nil {
		o.UpdatedAt = *aux.LegacyUpdated
	}
	return nil
}
