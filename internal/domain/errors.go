package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmissionInFlight is returned when a submit is attempted while another one is Sending
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ValidationError reports missing or malformed required fields
type ValidationError struct {
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Reason, strings.Join(e.Fields, ", "))
}

// TransportError wraps a failed outbound call to a provider
type TransportError struct {
	Provider   string
	StatusCode int
	// Messages holds user-facing messages reported by the provider, if any
	Messages []string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(": ")
	switch {
	case e.Timeout:
		b.WriteString("request timed out")
	case e.StatusCode != 0:
		fmt.Fprintf(&b, "unexpected status %d", e.StatusCode)
	default:
		b.WriteString("request failed")
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConfigurationError reports required deployment configuration that is absent or invalid
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	msg := "invalid configuration"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Missing) > 0 {
		msg += ": missing " + strings.Join(e.Missing, ", ")
	}
	return msg
}
