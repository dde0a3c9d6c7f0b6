package models

import "fmt"

// ValidationError reports a malformed generation request. It is fatal to
// the call that raised it and to nothing else.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ErrorKind classifies a GenerationError.
type ErrorKind string

const (
	ErrKindValidation ErrorKind = "validation"
	ErrKindInternal   ErrorKind = "internal"
)

// GenerationError is the structured failure returned by the orchestrator.
type GenerationError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
	Err       error     `json:"-"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// WarningKind classifies non-fatal outcomes.
type WarningKind string

const (
	WarnUnknownStyle     WarningKind = "unknown-style"
	WarnAnalysisDegraded WarningKind = "analysis-degraded"
)

// Warning is a non-fatal outcome carried on results and records.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Subject string      `json:"subject,omitempty"`
}

// UnknownStyleWarning is emitted when a requested style id is not in the
// catalog and the default was used instead.
func UnknownStyleWarning(styleID, fallback string) Warning {
	return Warning{
		Kind:    WarnUnknownStyle,
		Subject: styleID,
		Message: fmt.Sprintf("style %q not found, using %q", styleID, fallback),
	}
}

// AnalysisDegraded is emitted when pattern extraction found no usable signal.
func AnalysisDegraded(recordID, reason string) Warning {
	return Warning{
		Kind:    WarnAnalysisDegraded,
		Subject: recordID,
		Message: reason,
	}
}
