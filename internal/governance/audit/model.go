package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	inats "github.com/viralscript/viralscript/internal/nats"
)

// AuditLog matches the audit_logs table schema.
type AuditLog struct {
	ID           uuid.UUID       `json:"id"`
	OwnerUserID  uuid.UUID       `json:"owner_user_id"`
	EventType    string          `json:"event_type"`
	Severity     string          `json:"severity"`
	ResourceType string          `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit log queries.
type ListParams struct {
	EventType string
	Severity  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// DefaultListParams returns the first page of 20 entries.
func DefaultListParams() ListParams {
	return ListParams{
		Page:     1,
		PageSize: 20,
	}
}

// FromEvent converts a published event into a row. A ResourceID that is not
// a UUID is dropped; Details is stored as {"message": ...}.
func FromEvent(event inats.AuditEvent) *AuditLog {
	log := &AuditLog{
		ID:           uuid.New(),
		OwnerUserID:  event.OwnerUserID,
		EventType:    event.EventType,
		Severity:     event.Severity,
		ResourceType: event.ResourceType,
		IPAddress:    event.IPAddress,
		CreatedAt:    event.Timestamp,
	}

	if event.ResourceID != "" {
		if parsed, err := uuid.Parse(event.ResourceID); err == nil {
			log.ResourceID = &parsed
		}
	}

	if data, err := json.Marshal(map[string]string{"message": event.Details}); err == nil {
		log.Details = data
	}
	return log
}
