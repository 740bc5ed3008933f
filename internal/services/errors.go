package services

import (
	"errors"

	apperrors "github.com/iiuc-platform/interview-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")

	// Interview specific errors
	ErrInterviewNotFound     = errors.New("interview not found")
	ErrInterviewNotStartable = errors.New("interview cannot be started in current status")
	ErrInterviewCancelled    = errors.New("interview has been cancelled")
	ErrJobNotFound           = errors.New("job not found")

	// Session specific errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionConflict   = errors.New("another session is already active for this interview")
	ErrSessionCompleted  = errors.New("session already completed")
	ErrAnswerOutOfOrder  = errors.New("answer does not match the current question")
	ErrAnswerInProgress  = errors.New("an answer submission is already in progress")
	ErrSessionNoFindings = errors.New("session has no scored answers")
)

// ===== ERROR PREDICATES =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInterviewNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrJobNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionConflict) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrAnswerInProgress)
}

func IsOutOfOrder(err error) bool {
	return errors.Is(err, ErrAnswerOutOfOrder)
}

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}
