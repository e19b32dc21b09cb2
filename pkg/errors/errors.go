package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed portal error. It serialises to the uniform {"detail": ...} shape the
// views consume, plus a machine readable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"detail"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinels survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. The auth family (credentials, missing/expired/rejected tokens) is what the
// views treat as AuthError.
var (
	ErrInvalidCredentials   = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "incorrect username or password")
	ErrUnauthorized         = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrNotAuthenticated     = New("NOT_AUTHENTICATED", http.StatusUnauthorized, "User not authenticated")
	ErrSessionExpired       = New("SESSION_EXPIRED", http.StatusUnauthorized, "session expired, please sign in again")
	ErrTokenRejected        = New("TOKEN_REJECTED", http.StatusUnauthorized, "authenticated request was rejected")
	ErrForbidden            = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict             = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConfirmationRequired = New("CONFIRMATION_REQUIRED", http.StatusConflict, "destructive action requires confirmation")
	ErrTooManyRequests      = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests, "too many requests")
	ErrNetwork              = New("NETWORK_ERROR", http.StatusBadGateway, "backend is unreachable")
	ErrServer               = New("SERVER_ERROR", http.StatusBadGateway, "backend failed to process the request")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsAuth reports whether err belongs to the authentication family.
func IsAuth(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrInvalidCredentials.Code, ErrUnauthorized.Code, ErrNotAuthenticated.Code,
		ErrSessionExpired.Code, ErrTokenRejected.Code:
		return true
	}
	return false
}

// HasCode reports whether err normalises to the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
