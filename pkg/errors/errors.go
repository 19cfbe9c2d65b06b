package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies pipeline failures
type ErrorType string

const (
	// ErrorTypeTransport represents network/timeout failures on fetch or notify
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeUpstream represents a non-200 response from a source (possibly bot-blocking)
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeRateLimit represents an explicit rate-limit response (429/430)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeSelectorDrift represents zero extractable items where items were expected
	ErrorTypeSelectorDrift ErrorType = "selector_drift"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeValidation represents per-item validation failures
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStore represents persistence layer errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeNotify represents alert delivery failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents a classified error from a single source run
type PipelineError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the next scheduled tick may succeed without
// intervention. Nothing is retried within the same run.
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTransport, ErrorTypeUpstream, ErrorTypeStore:
		return true
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, provider, message string, err error) *PipelineError {
	return &PipelineError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewTransport creates a new transport error
func NewTransport(provider, message string, err error) *PipelineError {
	return New(ErrorTypeTransport, provider, message, err)
}

// NewUpstream creates a new upstream rejection error
func NewUpstream(provider string, statusCode int) *PipelineError {
	return New(ErrorTypeUpstream, provider, fmt.Sprintf("unexpected status code: %d", statusCode), nil)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, retryAfter string) *PipelineError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewSelectorDrift creates a new selector drift error
func NewSelectorDrift(provider, selector string) *PipelineError {
	return New(ErrorTypeSelectorDrift, provider, fmt.Sprintf("no items matched %q on a page that previously yielded items", selector), nil)
}

// NewParsing creates a new parsing error
func NewParsing(provider, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, provider, message, err)
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *PipelineError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewStore creates a new store error
func NewStore(provider, message string, err error) *PipelineError {
	return New(ErrorTypeStore, provider, message, err)
}

// NewNotify creates a new notify error
func NewNotify(provider, message string, err error) *PipelineError {
	return New(ErrorTypeNotify, provider, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of err, or "" if err is not a PipelineError
func TypeOf(err error) ErrorType {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsSelectorDrift reports whether err is a selector drift signal
func IsSelectorDrift(err error) bool {
	return TypeOf(err) == ErrorTypeSelectorDrift
}

// IsRateLimit reports whether err is a rate limit signal
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}
