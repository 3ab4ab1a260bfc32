package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultSubmitTimeout bounds one outbound call when no timeout is configured
const DefaultSubmitTimeout = 12 * time.Second

// ContactOptions configures the contact flow
type ContactOptions struct {
	// AutoReply, when set, confirms receipt to the submitter after the notify send succeeds
	AutoReply domain.Transport
	// AutoReplyRequired turns an auto-reply failure into Failed(partial)
	AutoReplyRequired bool
	Timeout           time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

type contactUsecase struct {
	validate          *validator.Validate
	notify            domain.Transport
	autoReply         domain.Transport
	autoReplyRequired bool
	timeout           time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// NewContactUsecase creates a new contact usecase around the notify transport
func NewContactUsecase(notify domain.Transport, validate *validator.Validate, opts ContactOptions) domain.ContactUsecase {
	if validate == nil {
		validate = validation.New()
	}
	uc := &contactUsecase{
		validate:          validate,
		notify:            notify,
		autoReply:         opts.AutoReply,
		autoReplyRequired: opts.AutoReplyRequired,
		timeout:           opts.Timeout,
		logger:            opts.Logger,
		now:               opts.Now,
	}
	if uc.timeout <= 0 {
		uc.timeout = DefaultSubmitTimeout
	}
	if uc.logger == nil {
		uc.logger = slog.Default()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// Validate checks required fields, email shape and length limits, in that order of precedence
func (uc *contactUsecase) Validate(form domain.SubmissionForm) domain.ValidationResult {
	err := uc.validate.Struct(form)
	if err == nil {
		return domain.ValidationResult{Valid: true}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationResult{Reason: domain.MsgRequiredFields}
	}
	uc.logger.Debug("Contact form rejected", "errors", validation.FormatValidationErrors(err))

	var missing, malformed, tooLong []string
	var firstTooLong validator.FieldError
	for _, fe := range verrs {
		label := validation.FieldLabel(fe.Field())
		switch fe.Tag() {
		case "notblank", "required":
			missing = append(missing, label)
		case "contact_email", "email":
			malformed = append(malformed, label)
		case "max":
			if firstTooLong == nil {
				firstTooLong = fe
			}
			tooLong = append(tooLong, label)
		default:
			malformed = append(malformed, label)
		}
	}

	switch {
	case len(missing) > 0:
		return domain.ValidationResult{Reason: domain.MsgRequiredFields, Fields: missing}
	case len(malformed) > 0:
		return domain.ValidationResult{Reason: domain.MsgInvalidEmail, Fields: malformed}
	default:
		return domain.ValidationResult{
			Reason: fmt.Sprintf("%s must be at most %s characters.", validation.FieldLabel(firstTooLong.Field()), firstTooLong.Param()),
			Fields: tooLong,
		}
	}
}

// Submit validates the form and makes exactly one notify call (plus the optional auto-reply)
func (uc *contactUsecase) Submit(ctx context.Context, form domain.SubmissionForm) domain.SubmissionStatus {
	if res := uc.Validate(form); !res.Valid {
		status := domain.Failed(domain.ReasonValidation, res.Reason)
		status.Fields = res.Fields
		return status
	}
	if uc.notify == nil {
		uc.logger.ErrorContext(ctx, "contact transport not configured")
		return domain.Failed(domain.ReasonConfiguration, domain.MsgNotConfigured)
	}

	payload := &domain.Payload{
		ReferenceID: uuid.NewString(),
		Name:        strings.TrimSpace(form.Name),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		Message:     strings.TrimSpace(form.Message),
		SubmittedAt: uc.now().UTC(),
	}

	if err := uc.send(ctx, uc.notify, payload); err != nil {
		return uc.failure(ctx, uc.notify, payload, err)
	}

	if uc.autoReply != nil {
		if err := uc.send(ctx, uc.autoReply, payload); err != nil {
			uc.logger.WarnContext(ctx, "auto-reply failed after notification was delivered",
				"reference_id", payload.ReferenceID,
				"provider", uc.autoReply.Name(),
				"error", err,
			)
			if uc.autoReplyRequired {
				return domain.Failed(domain.ReasonPartial, domain.MsgPartialFailure)
			}
		}
	}

	uc.logger.InfoContext(ctx, "contact submission sent",
		"reference_id", payload.ReferenceID,
		"provider", uc.notify.Name(),
	)
	return domain.Succeeded()
}

// send bounds one transport call by the configured timeout
func (uc *contactUsecase) send(ctx context.Context, t domain.Transport, p *domain.Payload) error {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	err := t.Send(ctx, p)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var te *domain.TransportError
		if errors.As(err, &te) {
			te.Timeout = true
			return te
		}
		return &domain.TransportError{Provider: t.Name(), Timeout: true, Err: err}
	}
	return err
}

// failure logs the underlying cause and maps it to a user-facing status
func (uc *contactUsecase) failure(ctx context.Context, t domain.Transport, p *domain.Payload, err error) domain.SubmissionStatus {
	uc.logger.ErrorContext(ctx, "contact submission failed",
		"reference_id", p.ReferenceID,
		"provider", t.Name(),
		"error", err,
	)

	var te *domain.TransportError
	if errors.As(err, &te) {
		if te.Timeout {
			return domain.Failed(domain.ReasonTimeout, domain.MsgTimedOut)
		}
		if len(te.Messages) > 0 {
			return domain.Failed(domain.ReasonTransport,
				fmt.Sprintf("We could not send your message: %s.", strings.TrimRight(strings.Join(te.Messages, "; "), ".")))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Failed(domain.ReasonTimeout, domain.MsgTimedOut)
	}
	return domain.Failed(domain.ReasonTransport, domain.MsgGenericFailure)
}
