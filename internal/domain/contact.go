package domain

import (
	"context"
	"time"
)

// SubmissionForm represents the fields of one contact form session
type SubmissionForm struct {
	Name    string `json:"name" form:"name" validate:"notblank,max=100"`
	Email   string `json:"email" form:"email" validate:"notblank,contact_email,max=254"`
	Phone   string `json:"phone" form:"phone" validate:"max=32"`
	Message string `json:"message" form:"message" validate:"notblank,max=5000"`
}

// Reset clears every field
func (f *SubmissionForm) Reset() {
	*f = SubmissionForm{}
}

// ValidationResult is Valid or Invalid(Reason)
type ValidationResult struct {
	Valid  bool
	Reason string
	// Fields lists offending field names in user-friendly form
	Fields []string
}

// Err returns a *ValidationError for an invalid result, nil otherwise
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Reason: r.Reason, Fields: r.Fields}
}

// Payload is the normalized record handed to a Transport
type Payload struct {
	ReferenceID string
	Name        string
	Email       string
	Phone       string
	Message     string
	SubmittedAt time.Time
}

// Transport turns a validated submission into one outbound call to a provider
type Transport interface {
	Name() string
	Send(ctx context.Context, payload *Payload) error
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Validate checks the form without side effects
	Validate(form SubmissionForm) ValidationResult
	// Submit validates the form and, when valid, sends it through the configured transport
	Submit(ctx context.Context, form SubmissionForm) SubmissionStatus
}

// User-facing messages
const (
	MsgRequiredFields = "Please fill in all required fields."
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgGenericFailure = "Something went wrong while sending your message. Please try again."
	MsgTimedOut       = "Request timed out. Please try again."
	MsgPartialFailure = "Your message was delivered, but we could not send you a confirmation email."
	MsgNotConfigured  = "Contact service temporarily unavailable."
	MsgSent           = "Your message has been sent successfully!"
)
