package models

import (
	"strings"
	"time"
)

// UserRole is the backend role of a portal user. Values are lowercase on the wire.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// ParseRole normalises a role string. Anything unrecognised, including an empty role, behaves
// like a student.
func ParseRole(raw string) UserRole {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleTeacher:
		return RoleTeacher
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleStudent
	}
}

// User mirrors the backend user resource.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone,omitempty"`
	Role     UserRole `json:"role"`
	GroupID  string   `json:"group_id,omitempty"`
	IsActive bool     `json:"is_active"`
}

// EffectiveRole returns the normalised role used for visibility decisions.
func (u User) EffectiveRole() UserRole {
	return ParseRole(string(u.Role))
}

// DisplayName picks full name, then username, then the local part of the email.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// Session is the persisted session object: bearer token plus cached profile fields.
type Session struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
	User
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HasToken reports whether the session carries a bearer token.
func (s *Session) HasToken() bool {
	return s != nil && s.Token != ""
}

// Expired reports whether the token expiry is known and in the past.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// MergeUser overlays the non-empty profile fields of u onto the session.
func (s *Session) MergeUser(u User) {
	if u.ID != "" {
		s.ID = u.ID
	}
	if u.Username != "" {
		s.Username = u.Username
	}
	if u.Email != "" {
		s.Email = u.Email
	}
	if u.FullName != "" {
		s.FullName = u.FullName
	}
	if u.Phone != "" {
		s.Phone = u.Phone
	}
	if u.Role != "" {
		s.Role = u.Role
	}
	if u.GroupID != "" {
		s.GroupID = u.GroupID
	}
	s.IsActive = u.IsActive
}

// Token is the /auth/token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the portal registration form.
type RegisterRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	FullName string `json:"full_name" form:"full_name" validate:"omitempty,max=255"`
}

// LoginRequest is the portal login form.
type LoginRequest struct {
	Username    string `json:"username" form:"username" validate:"required"`
	Password    string `json:"password" form:"password" validate:"required"`
	RedirectURL string `json:"redirectUrl" form:"redirectUrl"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FullName string `json:"full_name,omitempty" form:"full_name" validate:"omitempty,max=255"`
	Email    string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=32"`
	Username string `json:"username,omitempty" form:"username" validate:"omitempty,min=3,max=64"`
}

// ProfileResult is returned by the profile fetch. A rejected token is reported as
// Status 401 with a nil User instead of an error.
type ProfileResult struct {
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	User   *User  `json:"user,omitempty"`
}
