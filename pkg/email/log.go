package email

import (
	"context"
	"log/slog"

	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/security"
)

// LogTransport is a basic provider that only logs submissions. Used for local development.
type LogTransport struct {
	logger *slog.Logger
}

func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger.With("component", "contact_transport")}
}

func (t *LogTransport) Name() string { return "log" }

// Send logs the submission and returns nil to indicate success
func (t *LogTransport) Send(ctx context.Context, p *domain.Payload) error {
	t.logger.InfoContext(ctx, "contact submission delivered to log",
		"reference_id", p.ReferenceID,
		"email", security.MaskEmail(p.Email),
		"message_length", len(p.Message),
	)
	return nil
}
