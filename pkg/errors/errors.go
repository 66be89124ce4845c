package errors

import (
	"errors"
	"maps"
	"net/http"
)

// AppError is the error shape rendered to browsers and API clients.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Internal   error             `json:"-"`
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal != nil:
		return e.Message + ": " + e.Internal.Error()
	default:
		return e.Message
	}
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any AppError with the same code, so copies made by the With methods
// still satisfy errors.Is against the shared values below.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

func (e *AppError) clone() *AppError {
	cpy := *e
	return &cpy
}

// WithInternal returns a copy carrying err for logs.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	cpy.Internal = err
	return cpy
}

// WithMessage returns a copy carrying a different user-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	cpy.Message = message
	return cpy
}

// WithFields returns a copy carrying per-field messages.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	if e == nil {
		return nil
	}
	cpy := e.clone()
	cpy.Fields = nil
	if len(fields) > 0 {
		cpy.Fields = maps.Clone(fields)
	}
	return cpy
}

func define(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: status}
}

// Shared errors. Derive per-request variants with the With methods; never mutate these.
var (
	ErrValidation         = define("VALIDATION_FAILED", http.StatusUnprocessableEntity, "Validation failed")
	ErrFlowRejected       = define("FLOW_REJECTED", http.StatusUnprocessableEntity, "Request rejected")
	ErrSubmissionPending  = define("SUBMISSION_PENDING", http.StatusConflict, "A submission for this form is already in progress")
	ErrResendCooldown     = define("RESEND_COOLDOWN", http.StatusTooManyRequests, "Please wait before requesting another code")
	ErrInvalidCredentials = define("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid email or password")
	ErrUnauthorized       = define("UNAUTHORIZED", http.StatusUnauthorized, "Authentication required")
	ErrNotFound           = define("NOT_FOUND", http.StatusNotFound, "Resource not found")
	ErrBadRequest         = define("BAD_REQUEST", http.StatusBadRequest, "Invalid request")
	ErrInternalServer     = define("INTERNAL_SERVER_ERROR", http.StatusInternalServerError, "Internal server error")
	ErrRateLimit          = define("RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests, "Too many requests, please slow down")
	ErrCSRFInvalid        = define("CSRF_TOKEN_INVALID", http.StatusForbidden, "Invalid CSRF token")
)

// FromError returns the AppError inside err, or ErrInternalServer wrapping it.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest reports a malformed request with message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// NewValidation reports inline field errors.
func NewValidation(fields map[string]string) *AppError {
	return ErrValidation.WithFields(fields)
}
