package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventSubmissionAccepted  EventType = "submission_accepted"
	EventSubmissionFailed    EventType = "submission_failed"
	EventSubmissionRejected  EventType = "submission_rejected"
	EventSubmissionDuplicate EventType = "submission_duplicate"
	EventRateLimitTriggered  EventType = "rate_limit_triggered"
)

// SecurityEvent represents an audit event to be logged. It never carries message content.
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Provider     string                 `json:"provider,omitempty"`
	Fields       []string               `json:"fields,omitempty"` // offending fields for rejections
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for audit events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	// Optional: DB persistence function
	persistFunc func(ctx context.Context, event SecurityEvent) error
	wg          sync.WaitGroup
}

var (
	defaultLogger *SecurityLogger
	defaultMu     sync.Mutex
)

// InitSecurityLogger initializes the default security logger with a production Zap config
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Set output to stdout for container environments
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	SetDefaultLogger(sl)
	return sl
}

// NewSecurityLogger wraps an existing zap logger
func NewSecurityLogger(zapLogger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   zapLogger,
		serviceName: serviceName,
		environment: environment,
	}
}

// SetDefaultLogger replaces the logger returned by DefaultLogger
func SetDefaultLogger(sl *SecurityLogger) {
	defaultMu.Lock()
	defaultLogger = sl
	defaultMu.Unlock()
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	defaultMu.Lock()
	sl := defaultLogger
	defaultMu.Unlock()
	if sl == nil {
		// Create a basic logger if not initialized
		return InitSecurityLogger("agency-contact-api", getEnvironment())
	}
	return sl
}

// SetPersistFunc sets the function to persist events to database
func (sl *SecurityLogger) SetPersistFunc(f func(ctx context.Context, event SecurityEvent) error) {
	sl.persistFunc = f
}

// Log logs an audit event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := zapcore.InfoLevel
	switch event.Event {
	case EventSubmissionRejected, EventSubmissionDuplicate, EventRateLimitTriggered:
		level = zapcore.WarnLevel
	case EventSubmissionFailed:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.Provider != "" {
		fields = append(fields, zap.String("provider", event.Provider))
	}
	if len(event.Fields) > 0 {
		fields = append(fields, zap.Strings("fields", event.Fields))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)

	if sl.persistFunc != nil {
		sl.wg.Add(1)
		go func(e SecurityEvent) {
			defer sl.wg.Done()
			// Request context may already be canceled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := sl.persistFunc(ctx, e); err != nil {
				sl.zapLogger.Error("Failed to persist audit event", zap.Error(err))
			}
		}(event)
	}
}

// SubmissionMeta identifies the request behind an audit event
type SubmissionMeta struct {
	Email     string
	IP        string
	UserAgent string
	RequestID string
	Provider  string
}

func (sl *SecurityLogger) submissionEvent(event EventType, m SubmissionMeta) SecurityEvent {
	e := SecurityEvent{
		Event:     event,
		IP:        m.IP,
		UserAgent: m.UserAgent,
		RequestID: m.RequestID,
		Provider:  m.Provider,
	}
	if m.Email != "" {
		e.SubjectType = "email"
		e.SubjectValue = MaskEmail(m.Email)
	}
	return e
}

// LogSubmissionAccepted logs a submission the provider accepted
func (sl *SecurityLogger) LogSubmissionAccepted(ctx context.Context, m SubmissionMeta) {
	sl.Log(ctx, sl.submissionEvent(EventSubmissionAccepted, m))
}

// LogSubmissionFailed logs a submission the provider did not accept
func (sl *SecurityLogger) LogSubmissionFailed(ctx context.Context, m SubmissionMeta, reason string) {
	e := sl.submissionEvent(EventSubmissionFailed, m)
	e.Details = map[string]interface{}{"reason": reason}
	sl.Log(ctx, e)
}

// LogSubmissionRejected logs a submission that failed validation
func (sl *SecurityLogger) LogSubmissionRejected(ctx context.Context, m SubmissionMeta, fields []string) {
	e := sl.submissionEvent(EventSubmissionRejected, m)
	e.Fields = fields
	sl.Log(ctx, e)
}

// LogSubmissionDuplicate logs an identical submission arriving while one is in flight
func (sl *SecurityLogger) LogSubmissionDuplicate(ctx context.Context, m SubmissionMeta) {
	sl.Log(ctx, sl.submissionEvent(EventSubmissionDuplicate, m))
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip_hash",
		SubjectValue: HashValue(ip),
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// Sync waits for pending persistence and flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	sl.wg.Wait()
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com").
// Input without an "@" is fully masked.
func MaskEmail(email string) string {
	atIndex := strings.IndexByte(email, '@')
	if len(email) < 3 || atIndex < 0 {
		return "***"
	}
	first, size := utf8.DecodeRuneInString(email)
	if atIndex <= size {
		return "***" + email[atIndex:]
	}
	return string(first) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8]) // First 16 chars of hex
}

func getEnvironment() string {
	env := os.Getenv("GIN_MODE")
	if env == "release" {
		return "production"
	}
	return "development"
}
