package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"agency-contact-api/internal/domain"

	"github.com/joho/godotenv"
)

// Supported contact providers
const (
	ProviderSMTP       = "smtp"
	ProviderResend     = "resend"
	ProviderEmailJS    = "emailjs"
	ProviderFormspree  = "formspree"
	ProviderAppsScript = "appsscript"
	ProviderLog        = "log"
)

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	LogLevel       string
	GELFAddr       string
	DBUrl          string
	// Contact flow
	ContactProvider          string
	ContactTimeout           time.Duration
	ContactEmailTo           string
	ContactEmailFrom         string
	ContactAutoReply         bool
	ContactAutoReplyRequired bool
	// SMTP Configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	// Resend
	ResendAPIKey string
	ResendAPIURL string
	// EmailJS
	EmailJSServiceID         string
	EmailJSTemplateID        string
	EmailJSAutoReplyTemplate string
	EmailJSPublicKey         string
	EmailJSPrivateKey        string
	EmailJSAPIURL            string
	// Formspree / Apps Script
	FormspreeEndpoint string
	AppsScriptURL     string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	// Security Configuration
	SecurityLogToDB bool // Whether to persist submission audit events to database
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored in production when the file is absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		GELFAddr:       getEnv("GELF_ADDR", ""),
		DBUrl:          getEnv("DATABASE_URL", ""),
		// Contact flow
		ContactProvider:          strings.ToLower(strings.TrimSpace(getEnv("CONTACT_PROVIDER", ProviderLog))),
		ContactTimeout:           time.Duration(getEnvInt("CONTACT_TIMEOUT_SECONDS", 12)) * time.Second,
		ContactEmailTo:           getEnv("CONTACT_EMAIL_TO", ""),
		ContactEmailFrom:         getEnv("CONTACT_EMAIL_FROM", ""),
		ContactAutoReply:         getEnvBool("CONTACT_AUTO_REPLY", false),
		ContactAutoReplyRequired: getEnvBool("CONTACT_AUTO_REPLY_REQUIRED", false),
		// SMTP Configuration
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		// Resend
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		ResendAPIURL: strings.TrimRight(getEnv("RESEND_API_URL", "https://api.resend.com"), "/"),
		// EmailJS
		EmailJSServiceID:         getEnv("EMAILJS_SERVICE_ID", ""),
		EmailJSTemplateID:        getEnv("EMAILJS_TEMPLATE_ID", ""),
		EmailJSAutoReplyTemplate: getEnv("EMAILJS_AUTO_REPLY_TEMPLATE_ID", ""),
		EmailJSPublicKey:         getEnv("EMAILJS_PUBLIC_KEY", ""),
		EmailJSPrivateKey:        getEnv("EMAILJS_PRIVATE_KEY", ""),
		EmailJSAPIURL:            strings.TrimRight(getEnv("EMAILJS_API_URL", "https://api.emailjs.com"), "/"),
		// Formspree / Apps Script
		FormspreeEndpoint: getEnv("FORMSPREE_ENDPOINT", ""),
		AppsScriptURL:     getEnv("APPS_SCRIPT_URL", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
		// Security Configuration
		SecurityLogToDB: getEnvBool("SECURITY_LOG_TO_DB", false),
	}

	if cfg.ContactTimeout <= 0 {
		cfg.ContactTimeout = 12 * time.Second
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting and duplicate guard will use in-memory fallback.")
	}

	return cfg, nil
}

// Validate checks that the selected contact provider has everything it needs.
// It returns a *domain.ConfigurationError naming every missing key.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	autoReplySupported := false
	switch c.ContactProvider {
	case ProviderSMTP:
		require("SMTP_HOST", c.SMTPHost)
		require("SMTP_USERNAME", c.SMTPUsername)
		require("SMTP_PASSWORD", c.SMTPPassword)
		require("CONTACT_EMAIL_TO", c.ContactEmailTo)
		autoReplySupported = true
	case ProviderResend:
		require("RESEND_API_KEY", c.ResendAPIKey)
		require("CONTACT_EMAIL_TO", c.ContactEmailTo)
		require("CONTACT_EMAIL_FROM", c.ContactEmailFrom)
		autoReplySupported = true
	case ProviderEmailJS:
		require("EMAILJS_SERVICE_ID", c.EmailJSServiceID)
		require("EMAILJS_TEMPLATE_ID", c.EmailJSTemplateID)
		require("EMAILJS_PUBLIC_KEY", c.EmailJSPublicKey)
		if c.ContactAutoReply {
			require("EMAILJS_AUTO_REPLY_TEMPLATE_ID", c.EmailJSAutoReplyTemplate)
		}
		autoReplySupported = true
	case ProviderFormspree:
		require("FORMSPREE_ENDPOINT", c.FormspreeEndpoint)
	case ProviderAppsScript:
		require("APPS_SCRIPT_URL", c.AppsScriptURL)
	case ProviderLog:
	default:
		return &domain.ConfigurationError{Reason: "unknown CONTACT_PROVIDER " + strconv.Quote(c.ContactProvider)}
	}

	if len(missing) > 0 {
		return &domain.ConfigurationError{Reason: "provider " + c.ContactProvider, Missing: missing}
	}
	if c.ContactAutoReply && !autoReplySupported {
		return &domain.ConfigurationError{Reason: "CONTACT_AUTO_REPLY is not supported by provider " + c.ContactProvider}
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || os.Getenv("GIN_MODE") == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList splits a comma separated environment variable, dropping blanks and trailing slashes
func getEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
