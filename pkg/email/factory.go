package email

import (
	"fmt"
	"log/slog"
	"net/http"

	"agency-contact-api/config"
	"agency-contact-api/internal/domain"
)

// Transports bundles the notify transport and the optional auto-reply transport
type Transports struct {
	Notify    domain.Transport
	AutoReply domain.Transport // nil when auto-reply is disabled
}

// NewTransports builds the transports for the configured provider.
// It validates the configuration first and returns a *domain.ConfigurationError on failure.
func NewTransports(cfg *config.Config, client *http.Client, logger *slog.Logger) (*Transports, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = NewHTTPClient(cfg.ContactTimeout)
	}

	out := &Transports{}
	switch cfg.ContactProvider {
	case config.ProviderSMTP:
		smtpCfg := SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.ContactEmailFrom,
			Inbox:    cfg.ContactEmailTo,
		}
		out.Notify = NewSMTPTransport(smtpCfg)
		if cfg.ContactAutoReply {
			out.AutoReply = NewSMTPAutoReply(smtpCfg)
		}

	case config.ProviderResend:
		out.Notify = NewResendTransport(client, cfg.ResendAPIURL, cfg.ResendAPIKey, cfg.ContactEmailFrom, cfg.ContactEmailTo)
		if cfg.ContactAutoReply {
			out.AutoReply = NewResendAutoReply(client, cfg.ResendAPIURL, cfg.ResendAPIKey, cfg.ContactEmailFrom, cfg.ContactEmailTo)
		}

	case config.ProviderEmailJS:
		ejs := EmailJSConfig{
			BaseURL:    cfg.EmailJSAPIURL,
			ServiceID:  cfg.EmailJSServiceID,
			PublicKey:  cfg.EmailJSPublicKey,
			PrivateKey: cfg.EmailJSPrivateKey,
			Inbox:      cfg.ContactEmailTo,
		}
		out.Notify = NewEmailJSTransport(client, ejs, cfg.EmailJSTemplateID)
		if cfg.ContactAutoReply {
			out.AutoReply = NewEmailJSAutoReply(client, ejs, cfg.EmailJSAutoReplyTemplate)
		}

	case config.ProviderFormspree:
		out.Notify = NewFormspreeTransport(client, cfg.FormspreeEndpoint)

	case config.ProviderAppsScript:
		out.Notify = NewAppsScriptTransport(client, cfg.AppsScriptURL)

	case config.ProviderLog:
		out.Notify = NewLogTransport(logger)

	default:
		return nil, fmt.Errorf("unsupported contact provider %q", cfg.ContactProvider)
	}

	return out, nil
}
