// internal/gateway/errors.go
package gateway

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrServiceFailure covers transport errors, non-2xx answers, quota and
	// timeouts from the AI service.
	ErrServiceFailure    = errors.New("AI service request failed")
	ErrMalformedResponse = errors.New("AI service returned a malformed response")
	ErrEmptyResponse     = errors.New("AI service returned no content")
	ErrInvalidRequest    = errors.New("invalid gateway request")
)

type Op string

const (
	OpGenerateDietPlan Op = "generate_diet_plan"
	OpGetSubstitution  Op = "get_substitution"
	OpChat             Op = "chat_with_nutritionist"
)

// OpError is returned by every gateway operation. The wrapped error matches
// one of the package sentinels under errors.Is.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err came from GenerateDietPlan.
func IsGenerationError(err error) bool {
	return opOf(err) == OpGenerateDietPlan
}

func IsSubstitutionError(err error) bool {
	return opOf(err) == OpGetSubstitution
}

func IsChatError(err error) bool {
	return opOf(err) == OpChat
}

func opOf(err error) Op {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Op
	}
	return ""
}

// Kind names the taxonomy bucket of err for logs and the call log.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrServiceFailure):
		return "service_failure"
	default:
		return "unknown"
	}
}
