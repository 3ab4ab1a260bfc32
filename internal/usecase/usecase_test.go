package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"agency-contact-api/internal/domain"
	"agency-contact-api/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport records outbound calls
type MockTransport struct {
	mock.Mock
	name string
}

func newMockTransport(name string) *MockTransport {
	return &MockTransport{name: name}
}

func (m *MockTransport) Name() string { return m.name }

func (m *MockTransport) Send(ctx context.Context, p *domain.Payload) error {
	return m.Called(ctx, p).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validForm() domain.SubmissionForm {
	return domain.SubmissionForm{Name: "Jane Doe", Email: "jane@example.com", Message: "Hello"}
}

func TestValidate(t *testing.T) {
	uc := usecase.NewContactUsecase(newMockTransport("mock"), nil, usecase.ContactOptions{Logger: quietLogger()})

	t.Run("Should accept a complete form", func(t *testing.T) {
		res := uc.Validate(validForm())
		assert.True(t, res.Valid)
		assert.Empty(t, res.Reason)
		assert.NoError(t, res.Err())
	})

	t.Run("Phone has no constraint beyond length", func(t *testing.T) {
		form := validForm()
		form.Phone = "call me maybe"
		assert.True(t, uc.Validate(form).Valid)
	})

	t.Run("Should reject blank required fields", func(t *testing.T) {
		cases := map[string]domain.SubmissionForm{
			"name":    {Name: "   ", Email: "jane@example.com", Message: "Hello"},
			"email":   {Name: "Jane", Email: "", Message: "Hello"},
			"message": {Name: "Jane", Email: "jane@example.com", Message: "\n\t"},
		}
		for field, form := range cases {
			res := uc.Validate(form)
			assert.False(t, res.Valid, field)
			assert.Equal(t, domain.MsgRequiredFields, res.Reason, field)

			var verr *domain.ValidationError
			require.ErrorAs(t, res.Err(), &verr, field)
			assert.Len(t, verr.Fields, 1, field)
		}
	})

	t.Run("Should reject malformed email regardless of other fields", func(t *testing.T) {
		for _, email := range []string{"not-an-email", "jane@example", "@.", "jane example.com"} {
			form := validForm()
			form.Email = email
			res := uc.Validate(form)
			assert.False(t, res.Valid, email)
			assert.Equal(t, domain.MsgInvalidEmail, res.Reason, email)
			assert.Equal(t, []string{"Email"}, res.Fields)
		}
	})

	t.Run("Missing fields take precedence over email shape", func(t *testing.T) {
		res := uc.Validate(domain.SubmissionForm{Name: "", Email: "nope", Message: "Hi"})
		assert.Equal(t, domain.MsgRequiredFields, res.Reason)
		assert.Equal(t, []string{"Name"}, res.Fields)
	})

	t.Run("Should enforce length limits", func(t *testing.T) {
		form := validForm()
		form.Message = strings.Repeat("a", 5001)
		res := uc.Validate(form)
		assert.False(t, res.Valid)
		assert.Equal(t, "Message must be at most 5000 characters.", res.Reason)

		form.Message = strings.Repeat("é", 5000)
		assert.True(t, uc.Validate(form).Valid)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid form and accepting transport succeeds", func(t *testing.T) {
		tr := newMockTransport("mock")
		tr.On("Send", mock.Anything, mock.MatchedBy(func(p *domain.Payload) bool {
			return p.Name == "Jane Doe" && p.Email == "jane@example.com" && p.Message == "Hello" && p.ReferenceID != ""
		})).Return(nil).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusSucceeded, status.Kind)
		tr.AssertExpectations(t)
	})

	t.Run("Fields are trimmed before sending", func(t *testing.T) {
		tr := newMockTransport("mock")
		tr.On("Send", mock.Anything, mock.MatchedBy(func(p *domain.Payload) bool {
			return p.Name == "Jane" && p.Phone == "+1 555"
		})).Return(nil).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})
		status := uc.Submit(ctx, domain.SubmissionForm{Name: "  Jane ", Email: "jane@example.com", Phone: " +1 555 ", Message: "Hi"})

		assert.Equal(t, domain.StatusSucceeded, status.Kind)
		tr.AssertExpectations(t)
	})

	t.Run("Invalid form never reaches the network", func(t *testing.T) {
		tr := newMockTransport("mock")
		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})

		status := uc.Submit(ctx, domain.SubmissionForm{Name: "", Email: "jane@example.com", Message: "Hello"})
		assert.Equal(t, domain.Failed(domain.ReasonValidation, domain.MsgRequiredFields).Kind, status.Kind)
		assert.Equal(t, domain.MsgRequiredFields, status.Message)
		assert.Equal(t, domain.ReasonValidation, status.Reason)

		status = uc.Submit(ctx, domain.SubmissionForm{Name: "Jane", Email: "not-an-email", Message: "Hi"})
		assert.Equal(t, domain.StatusFailed, status.Kind)

		tr.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Network error maps to the generic message", func(t *testing.T) {
		tr := newMockTransport("mock")
		tr.On("Send", mock.Anything, mock.Anything).
			Return(&domain.TransportError{Provider: "mock", Err: errors.New("connection refused")}).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusFailed, status.Kind)
		assert.Equal(t, domain.MsgGenericFailure, status.Message)
		assert.NotContains(t, status.Message, "connection refused")
	})

	t.Run("Provider error messages are surfaced", func(t *testing.T) {
		tr := newMockTransport("mock")
		tr.On("Send", mock.Anything, mock.Anything).
			Return(&domain.TransportError{Provider: "mock", StatusCode: 422, Messages: []string{"Email invalid"}}).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusFailed, status.Kind)
		assert.Equal(t, domain.ReasonTransport, status.Reason)
		assert.Contains(t, status.Message, "Email invalid")
	})

	t.Run("Slow transport times out", func(t *testing.T) {
		tr := newMockTransport("slow")
		tr.On("Send", mock.Anything, mock.Anything).Return(context.DeadlineExceeded).Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger(), Timeout: 20 * time.Millisecond})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.ReasonTimeout, status.Reason)
		assert.Equal(t, domain.MsgTimedOut, status.Message)
	})

	t.Run("Sequential submits are independent", func(t *testing.T) {
		tr := newMockTransport("mock")
		tr.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		tr.On("Send", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()

		uc := usecase.NewContactUsecase(tr, nil, usecase.ContactOptions{Logger: quietLogger()})
		assert.Equal(t, domain.StatusSucceeded, uc.Submit(ctx, validForm()).Kind)
		assert.Equal(t, domain.StatusFailed, uc.Submit(ctx, validForm()).Kind)
		tr.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("Missing transport is a configuration failure", func(t *testing.T) {
		uc := usecase.NewContactUsecase(nil, nil, usecase.ContactOptions{Logger: quietLogger()})
		status := uc.Submit(ctx, validForm())
		assert.Equal(t, domain.ReasonConfiguration, status.Reason)
	})
}

func TestSubmitAutoReply(t *testing.T) {
	ctx := context.Background()

	t.Run("Best effort auto-reply failure still succeeds", func(t *testing.T) {
		notify := newMockTransport("notify")
		notify.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		reply := newMockTransport("reply")
		reply.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp 550")).Once()

		uc := usecase.NewContactUsecase(notify, nil, usecase.ContactOptions{Logger: quietLogger(), AutoReply: reply})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusSucceeded, status.Kind)
		notify.AssertExpectations(t)
		reply.AssertExpectations(t)
	})

	t.Run("Required auto-reply failure is a partial failure", func(t *testing.T) {
		notify := newMockTransport("notify")
		notify.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		reply := newMockTransport("reply")
		reply.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp 550")).Once()

		uc := usecase.NewContactUsecase(notify, nil, usecase.ContactOptions{
			Logger:            quietLogger(),
			AutoReply:         reply,
			AutoReplyRequired: true,
		})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusFailed, status.Kind)
		assert.Equal(t, domain.ReasonPartial, status.Reason)
		assert.Equal(t, domain.MsgPartialFailure, status.Message)
	})

	t.Run("Auto-reply is skipped when notification fails", func(t *testing.T) {
		notify := newMockTransport("notify")
		notify.On("Send", mock.Anything, mock.Anything).Return(errors.New("down")).Once()
		reply := newMockTransport("reply")

		uc := usecase.NewContactUsecase(notify, nil, usecase.ContactOptions{Logger: quietLogger(), AutoReply: reply})
		status := uc.Submit(ctx, validForm())

		assert.Equal(t, domain.StatusFailed, status.Kind)
		reply.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}
