package config_test

import (
	"testing"
	"time"

	"agency-contact-api/config"
	"agency-contact-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CONTACT_PROVIDER", " Resend ")
	t.Setenv("CONTACT_TIMEOUT_SECONDS", "7")
	t.Setenv("ALLOWED_ORIGINS", "https://agency.dev/, ,https://www.agency.dev")
	t.Setenv("CONTACT_AUTO_REPLY", "true")
	t.Setenv("RATE_LIMIT_CONTACT_THRESHOLD", "not-a-number")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderResend, cfg.ContactProvider)
	assert.Equal(t, 7*time.Second, cfg.ContactTimeout)
	assert.Equal(t, []string{"https://agency.dev", "https://www.agency.dev"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ContactAutoReply)
	assert.Equal(t, 5, cfg.RateLimitContactThreshold)
}

func TestValidate(t *testing.T) {
	t.Run("Should list every missing key for the provider", func(t *testing.T) {
		cfg := &config.Config{ContactProvider: config.ProviderSMTP, SMTPHost: "smtp.test"}
		err := cfg.Validate()

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, []string{"SMTP_USERNAME", "SMTP_PASSWORD", "CONTACT_EMAIL_TO"}, cfgErr.Missing)
	})

	t.Run("EmailJS auto-reply needs its own template", func(t *testing.T) {
		cfg := &config.Config{
			ContactProvider:   config.ProviderEmailJS,
			EmailJSServiceID:  "svc",
			EmailJSTemplateID: "tmpl",
			EmailJSPublicKey:  "pub",
			ContactAutoReply:  true,
		}
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, cfg.Validate(), &cfgErr)
		assert.Equal(t, []string{"EMAILJS_AUTO_REPLY_TEMPLATE_ID"}, cfgErr.Missing)

		cfg.EmailJSAutoReplyTemplate = "reply"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Auto-reply is rejected for providers without it", func(t *testing.T) {
		cfg := &config.Config{ContactProvider: config.ProviderFormspree, FormspreeEndpoint: "https://formspree.io/f/x", ContactAutoReply: true}
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, cfg.Validate(), &cfgErr)
		assert.Contains(t, cfgErr.Error(), "not supported")
	})

	t.Run("Unknown provider", func(t *testing.T) {
		cfg := &config.Config{ContactProvider: "carrier-pigeon"}
		assert.ErrorContains(t, cfg.Validate(), "unknown CONTACT_PROVIDER")
	})

	t.Run("Log provider is always valid", func(t *testing.T) {
		assert.NoError(t, (&config.Config{ContactProvider: config.ProviderLog}).Validate())
	})
}
