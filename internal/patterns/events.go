package patterns

import (
	"context"

	inats "github.com/viralscript/viralscript/internal/nats"
)

// AuditResourceType tags audit events that reference a saved pattern.
const AuditResourceType = "pattern"

// Pattern lifecycle events. The resource ID is the pattern ID, which is what
// the per-pattern audit trail filters on.
const (
	EventPatternCreated = "pattern_created"
	EventPatternUsed    = "pattern_used"
	EventPatternDeleted = "pattern_deleted"
)

// AuditPublisher emits audit events. A nil publisher disables events.
type AuditPublisher interface {
	PublishAuditEvent(ctx context.Context, event inats.AuditEvent) error
}
