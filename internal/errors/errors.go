package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeStore           = "E200"
	CodePlatform        = "E300"
	CodeNotFound        = "E404"
	CodeInvalidSchedule = "E422"
	CodeRateLimit       = "E429"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewStoreError wraps a persistence failure. Save failures must reach the
// caller, so these are surfaced rather than swallowed.
func NewStoreError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeStore,
		Message:     fmt.Sprintf("store error: %s", underlyingMsg),
		UserMessage: "A temporary problem occurred, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewNotFoundError signals that a lookup or delete target is absent. It is
// user-visible information, not an operational fault.
func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:        CodeNotFound,
		Message:     fmt.Sprintf("%s not found", what),
		UserMessage: fmt.Sprintf("%s not found.", what),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewInvalidScheduleError reports a malformed cron expression, before any
// persistence has happened.
func NewInvalidScheduleError(expr string, cause error) *AppError {
	return &AppError{
		Code:        CodeInvalidSchedule,
		Message:     fmt.Sprintf("invalid schedule expression %q", expr),
		UserMessage: fmt.Sprintf("Invalid cron expression: %q. Expected a five-field expression like \"0 12 * * *\".", expr),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       cause,
	}
}

// NewPlatformError wraps a rejected chat-platform action (ban, kick,
// timeout, send). Reported to the user as a generic failure, never fatal.
func NewPlatformError(action string, cause error) *AppError {
	return &AppError{
		Code:        CodePlatform,
		Message:     fmt.Sprintf("platform action failed: %s", action),
		UserMessage: fmt.Sprintf("Failed to %s.", action),
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewRateLimitError tells the user to slow down.
func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
