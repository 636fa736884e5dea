package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/governance/quota"
	"github.com/viralscript/viralscript/internal/metrics"
	inats "github.com/viralscript/viralscript/internal/nats"
	"github.com/viralscript/viralscript/internal/patterns"
	"github.com/viralscript/viralscript/internal/video"
)

// QuotaTracker gates generations behind the monthly allowance.
type QuotaTracker interface {
	CheckAndMaybeReset(ctx context.Context, userID uuid.UUID) (*quota.Status, error)
	Consume(ctx context.Context, userID uuid.UUID) (*quota.Reservation, error)
	Refund(ctx context.Context, res *quota.Reservation) error
	Reject(status *quota.Status) error
}

// Acquirer resolves transcripts for a batch of references.
type Acquirer interface {
	AcquireAll(ctx context.Context, refs []video.Reference) ([]video.Transcribed, error)
}

// PatternStore persists analyses for reuse.
type PatternStore interface {
	Save(ctx context.Context, ownerID uuid.UUID, name string, sourceURLs []string, analysis any) (*patterns.Pattern, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*patterns.Pattern, error)
}

// AuditPublisher emits audit events. A nil publisher disables events.
type AuditPublisher interface {
	PublishAuditEvent(ctx context.Context, event inats.AuditEvent) error
}

// Event types published by the pipeline. Pattern events use the constants of
// the patterns package.
const (
	EventGenerationCompleted = "generation_completed"
	EventGenerationFailed    = "generation_failed"
	EventQuotaExceeded       = "quota_exceeded"
)

const resourceGeneration = "generation"

type Service struct {
	validator   *RequestValidator
	quota       QuotaTracker
	acquirer    Acquirer
	analyzer    *Analyzer
	synthesizer *Synthesizer
	patterns    PatternStore
	events      AuditPublisher
	now         func() time.Time
}

func NewService(
	quotaTracker QuotaTracker,
	acquirer Acquirer,
	analyzer *Analyzer,
	synthesizer *Synthesizer,
	patternStore PatternStore,
	events AuditPublisher,
) *Service {
	return &Service{
		validator:   NewRequestValidator(),
		quota:       quotaTracker,
		acquirer:    acquirer,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		patterns:    patternStore,
		events:      events,
		now:         time.Now,
	}
}

// Generate runs the whole pipeline for one request. A generation slot is
// booked before any model call and returned if the request does not complete,
// so the counter only reflects successful generations.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, req *Request) (*Response, error) {
	result := s.validator.Validate(req)
	if !result.Valid {
		metrics.GenerationsTotal.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Errors: result.Errors}
	}

	status, err := s.quota.CheckAndMaybeReset(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking quota: %w", err)
	}
	if !status.WithinQuota {
		return nil, s.rejectQuota(ctx, userID, s.quota.Reject(status))
	}
	reservation, err := s.quota.Consume(ctx, userID)
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			return nil, s.rejectQuota(ctx, userID, err)
		}
		return nil, fmt.Errorf("consuming quota: %w", err)
	}

	requestID := uuid.New()
	resp, err := s.run(ctx, userID, requestID, req)
	if err != nil {
		if rerr := s.quota.Refund(context.WithoutCancel(ctx), reservation); rerr != nil {
			slog.Error("refunding generation", "error", rerr, "user_id", userID, "request_id", requestID)
		}
		metrics.GenerationsTotal.WithLabelValues("failed").Inc()
		s.publish(ctx, userID, EventGenerationFailed, "error", resourceGeneration, requestID.String(), err.Error())
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues("completed").Inc()
	s.publish(ctx, userID, EventGenerationCompleted, "info", resourceGeneration, requestID.String(),
		fmt.Sprintf("%d scripts generated", len(resp.Scripts)))
	return resp, nil
}

func (s *Service) run(ctx context.Context, userID, requestID uuid.UUID, req *Request) (*Response, error) {
	var (
		analysis  *Analysis
		patternID string
		err       error
	)

	if req.SavedPatternID != "" {
		analysis, patternID, err = s.loadPattern(ctx, userID, req.SavedPatternID)
	} else {
		analysis, patternID, err = s.analyze(ctx, userID, req.Videos)
	}
	if err != nil {
		return nil, err
	}

	scripts, err := s.synthesizer.Synthesize(ctx, analysis, *req.Theme, *req.Settings)
	if err != nil {
		return nil, fmt.Errorf("synthesizing scripts: %w", err)
	}

	slog.Info("generation completed",
		"user_id", userID,
		"request_id", requestID,
		"scripts", len(scripts),
		"pattern_id", patternID,
	)

	return &Response{
		RequestID:      requestID.String(),
		Timestamp:      s.now().UTC(),
		SavedPatternID: patternID,
		Analysis:       analysis,
		Scripts:        scripts,
	}, nil
}

func (s *Service) loadPattern(ctx context.Context, userID uuid.UUID, rawID string) (*Analysis, string, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, "", &ValidationError{Errors: []string{"padrao_salvo_id inválido"}}
	}
	p, err := s.patterns.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, "", fmt.Errorf("loading saved pattern: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(p.Analysis, &analysis); err != nil {
		return nil, "", fmt.Errorf("decoding saved pattern %s: %w", id, err)
	}
	s.publish(ctx, userID, patterns.EventPatternUsed, "info", patterns.AuditResourceType, p.ID.String(), p.Name)
	return &analysis, p.ID.String(), nil
}

func (s *Service) analyze(ctx context.Context, userID uuid.UUID, videos []VideoInput) (*Analysis, string, error) {
	refs, err := references(videos)
	if err != nil {
		return nil, "", &ValidationError{Errors: []string{err.Error()}}
	}

	transcribed, err := s.acquirer.AcquireAll(ctx, refs)
	if err != nil {
		return nil, "", fmt.Errorf("acquiring transcripts: %w", err)
	}

	analysis, err := s.analyzer.Analyze(ctx, transcribed)
	if err != nil {
		return nil, "", fmt.Errorf("analyzing patterns: %w", err)
	}

	urls := make([]string, len(refs))
	for i, r := range refs {
		urls[i] = r.URL
	}
	p, err := s.patterns.Save(ctx, userID, patternName(analysis), urls, analysis)
	if err != nil {
		// The analysis is still usable for this request.
		slog.Warn("saving pattern", "error", err, "user_id", userID)
		return analysis, "", nil
	}
	s.publish(ctx, userID, patterns.EventPatternCreated, "info", patterns.AuditResourceType, p.ID.String(),
		fmt.Sprintf("%s from %d videos", p.Name, len(urls)))
	return analysis, p.ID.String(), nil
}

func (s *Service) rejectQuota(ctx context.Context, userID uuid.UUID, err error) error {
	metrics.GenerationsTotal.WithLabelValues("quota_exceeded").Inc()
	s.publish(ctx, userID, EventQuotaExceeded, "warn", resourceGeneration, "", err.Error())
	return err
}

func (s *Service) publish(ctx context.Context, userID uuid.UUID, eventType, severity, resourceType, resourceID, details string) {
	if s.events == nil {
		return
	}
	event := inats.AuditEvent{
		OwnerUserID:  userID,
		EventType:    eventType,
		Severity:     severity,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Timestamp:    s.now().UTC(),
	}
	if err := s.events.PublishAuditEvent(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", eventType)
	}
}

// patternName summarizes an analysis as "<hook> + <cta> (<n> vídeos)".
func patternName(a *Analysis) string {
	hook := "gancho"
	if len(a.HookPatterns) > 0 && a.HookPatterns[0].Type != "" {
		hook = a.HookPatterns[0].Type
	}
	cta := a.CTAPattern.DominantType
	if cta == "" {
		cta = "cta"
	}
	return strings.ReplaceAll(fmt.Sprintf("%s + %s (%d vídeos)", hook, cta, a.VideosAnalyzed), "_", " ")
}
