package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// SecurityEventRepository handles persistence of audit events to database
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

// NewSecurityEventRepository creates a new repository for audit events
func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// CreateTableSQL is the schema for contact_audit_events
const CreateTableSQL = `
CREATE TABLE IF NOT EXISTS contact_audit_events (
	id            BIGSERIAL PRIMARY KEY,
	event_type    TEXT NOT NULL,
	service       TEXT NOT NULL,
	environment   TEXT NOT NULL,
	level         TEXT NOT NULL,
	subject_type  TEXT,
	subject_value TEXT,
	ip_address    INET,
	user_agent    TEXT,
	request_id    TEXT,
	provider      TEXT,
	fields        TEXT[],
	details       JSONB,
	created_at    TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the audit table if it does not exist
func (r *SecurityEventRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, CreateTableSQL); err != nil {
		return fmt.Errorf("failed to create contact_audit_events: %w", err)
	}
	return nil
}

// PersistEvent inserts an audit event into the database
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event SecurityEvent) error {
	query := `
		INSERT INTO contact_audit_events (
			event_type, service, environment, level,
			subject_type, subject_value, ip_address, user_agent,
			request_id, provider, fields, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	// Convert details to JSON
	var detailsJSON []byte
	if len(event.Details) > 0 {
		detailsJSON, _ = json.Marshal(event.Details)
	} else {
		detailsJSON = []byte("null") // Valid JSON null for empty details
	}

	// Handle IP address - use nil for empty strings
	var ipAddr interface{}
	if event.IP != "" {
		ipAddr = event.IP
	}

	_, err := r.db.Exec(ctx, query,
		string(event.Event),
		event.Service,
		event.Environment,
		event.Level,
		event.SubjectType,
		event.SubjectValue,
		ipAddr,
		event.UserAgent,
		event.RequestID,
		event.Provider,
		pq.Array(event.Fields),
		detailsJSON,
		event.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to persist audit event: %w", err)
	}

	return nil
}

// CreatePersistFunc creates a persist function for the SecurityLogger
func (r *SecurityEventRepository) CreatePersistFunc() func(context.Context, SecurityEvent) error {
	return r.PersistEvent
}
