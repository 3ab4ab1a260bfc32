package usecase

import (
	"context"
	"sync"

	"agency-contact-api/internal/domain"
)

// ContactSession holds one form and its submission status, the way a contact view does.
// The Sending state doubles as the in-flight guard.
type ContactSession struct {
	flow     domain.ContactUsecase
	observer func(domain.SubmissionStatus)

	mu     sync.Mutex
	form   domain.SubmissionForm
	status domain.SubmissionStatus
}

// SessionOption customizes a ContactSession
type SessionOption func(*ContactSession)

// WithStatusObserver registers a callback invoked on every status transition, in order
func WithStatusObserver(fn func(domain.SubmissionStatus)) SessionOption {
	return func(s *ContactSession) {
		s.observer = fn
	}
}

// NewContactSession starts with an empty form and an Idle status
func NewContactSession(flow domain.ContactUsecase, opts ...SessionOption) *ContactSession {
	s := &ContactSession{flow: flow, status: domain.Idle()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SetForm replaces the form fields (user keystrokes)
func (s *ContactSession) SetForm(form domain.SubmissionForm) {
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
}

func (s *ContactSession) Form() domain.SubmissionForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *ContactSession) Status() domain.SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ErrorMessage is the message of a Failed status, empty otherwise
func (s *ContactSession) ErrorMessage() string {
	st := s.Status()
	if st.Kind != domain.StatusFailed {
		return ""
	}
	return st.Message
}

// Submit sends the current form. It returns domain.ErrSubmissionInFlight without
// issuing a request when a previous submit is still Sending. An invalid form
// fails immediately without passing through Sending.
func (s *ContactSession) Submit(ctx context.Context) (domain.SubmissionStatus, error) {
	s.mu.Lock()
	if s.status.Kind == domain.StatusSending {
		s.mu.Unlock()
		return domain.Sending(), domain.ErrSubmissionInFlight
	}
	form := s.form
	if res := s.flow.Validate(form); !res.Valid {
		failed := domain.Failed(domain.ReasonValidation, res.Reason)
		failed.Fields = res.Fields
		s.status = failed
		s.mu.Unlock()
		s.notify(failed)
		return failed, nil
	}
	s.status = domain.Sending()
	s.mu.Unlock()
	s.notify(domain.Sending())

	result := s.flow.Submit(ctx, form)

	s.mu.Lock()
	s.status = result
	if result.Kind == domain.StatusSucceeded {
		s.form.Reset()
	}
	s.mu.Unlock()
	s.notify(result)

	return result, nil
}

func (s *ContactSession) notify(st domain.SubmissionStatus) {
	if s.observer != nil {
		s.observer(st)
	}
}
