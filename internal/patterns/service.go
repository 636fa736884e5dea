package patterns

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	inats "github.com/viralscript/viralscript/internal/nats"
)

type Service struct {
	repo   Repository
	events AuditPublisher
}

func NewService(repo Repository, events AuditPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// Save stores analysis as a new pattern owned by ownerID.
func (s *Service) Save(ctx context.Context, ownerID uuid.UUID, name string, sourceURLs []string, analysis any) (*Pattern, error) {
	doc, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshaling analysis: %w", err)
	}
	if sourceURLs == nil {
		sourceURLs = []string{}
	}

	p := &Pattern{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Name:        name,
		SourceURLs:  sourceURLs,
		Analysis:    doc,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetOwned loads a pattern and enforces that ownerID owns it.
func (s *Service) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*Pattern, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.OwnerUserID != ownerID {
		slog.Warn("pattern ownership violation attempt",
			"pattern_id", id,
			"pattern_owner", p.OwnerUserID,
			"requester", ownerID,
		)
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, params ListParams) ([]*Pattern, int64, error) {
	offset := (params.Page - 1) * params.PageSize
	list, err := s.repo.ListByOwner(ctx, ownerID, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []*Pattern{}
	}
	return list, total, nil
}

// Delete removes a pattern. Ownership is checked by the caller.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.events == nil {
		return nil
	}
	event := inats.AuditEvent{
		OwnerUserID:  ownerID,
		EventType:    EventPatternDeleted,
		Severity:     "info",
		ResourceType: AuditResourceType,
		ResourceID:   id.String(),
		Timestamp:    time.Now().UTC(),
	}
	if err := s.events.PublishAuditEvent(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", EventPatternDeleted)
	}
	return nil
}
