package llm

import (
	"errors"
	"fmt"
)

// GenerationError represents errors that can occur during generation
// backend calls
type GenerationError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("llm.%s: %s", e.Op, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidInput      = "InvalidInput"
	ErrCodeModelNotAvailable = "ModelNotAvailable"
	ErrCodeRateLimitExceeded = "RateLimitExceeded"
	ErrCodeTimeout           = "Timeout"
	ErrCodeUnreachable       = "Unreachable"
	ErrCodeAPIError          = "APIError"
	ErrCodeInternal          = "Internal"
)

// IsTransient reports whether err is a backend failure worth retrying
// with backoff (timeouts, rate limits, transient server errors).
func IsTransient(err error) bool {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return false
	}
	switch genErr.Code {
	case ErrCodeRateLimitExceeded, ErrCodeTimeout, ErrCodeUnreachable:
		return true
	default:
		return false
	}
}
