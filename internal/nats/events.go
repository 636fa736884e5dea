package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout bounds a single batch fetch from a consumer.
const FetchTimeout = 2 * time.Second

const StreamEvents = "VSCRIPT_EVENTS"

const (
	subjectEventsWildcard = "vscript.events.>"
	SubjectAuditEvent     = "vscript.events.audit"
)

// AuditEvent is published for compliance/audit logging.
type AuditEvent struct {
	OwnerUserID  uuid.UUID `json:"owner_user_id"`
	EventType    string    `json:"event_type"`
	Severity     string    `json:"severity"` // info, warn, error
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details"`
	IPAddress    string    `json:"ip_address,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
