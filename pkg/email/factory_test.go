package email_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"agency-contact-api/config"
	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransports(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Resend with auto-reply", func(t *testing.T) {
		cfg := &config.Config{
			ContactProvider:  config.ProviderResend,
			ContactTimeout:   time.Second,
			ContactEmailTo:   "hello@agency.dev",
			ContactEmailFrom: "noreply@agency.dev",
			ContactAutoReply: true,
			ResendAPIKey:     "re_test",
			ResendAPIURL:     "https://api.resend.com",
		}
		ts, err := email.NewTransports(cfg, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "resend", ts.Notify.Name())
		require.NotNil(t, ts.AutoReply)
		assert.Equal(t, "resend_auto_reply", ts.AutoReply.Name())
	})

	t.Run("Formspree without auto-reply", func(t *testing.T) {
		cfg := &config.Config{ContactProvider: config.ProviderFormspree, FormspreeEndpoint: "https://formspree.io/f/x"}
		ts, err := email.NewTransports(cfg, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "formspree", ts.Notify.Name())
		assert.Nil(t, ts.AutoReply)
	})

	t.Run("Log transport needs no configuration", func(t *testing.T) {
		ts, err := email.NewTransports(&config.Config{ContactProvider: config.ProviderLog}, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "log", ts.Notify.Name())
	})

	t.Run("Missing keys fail fast", func(t *testing.T) {
		_, err := email.NewTransports(&config.Config{ContactProvider: config.ProviderAppsScript}, nil, logger)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"APPS_SCRIPT_URL"}, cfgErr.Missing)
	})
}
