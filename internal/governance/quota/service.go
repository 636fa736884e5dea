package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/viralscript/viralscript/internal/metrics"
)

// Service tracks monthly generation allowances. Month rollover is detected
// lazily on access; no state is cached between calls.
type Service struct {
	store Store
	limit int
	now   func() time.Time
}

func NewService(store Store, monthlyLimit int) *Service {
	return &Service{store: store, limit: monthlyLimit, now: time.Now}
}

// CheckAndMaybeReset resets the counter on the first access of a new month
// and reports the resulting status.
func (s *Service) CheckAndMaybeReset(ctx context.Context, userID uuid.UUID) (*Status, error) {
	now := s.now().UTC()

	reset, err := s.store.ResetIfBefore(ctx, userID, monthStart(now), now)
	if err != nil {
		return nil, err
	}
	if reset {
		slog.Info("quota: monthly counter reset", "user_id", userID)
	}

	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.status(state.GenerationsUsed, now), nil
}

// Consume books one generation. It fails with an *ExceededError when the
// allowance is exhausted, including when a concurrent request took the last
// slot after the caller's check.
func (s *Service) Consume(ctx context.Context, userID uuid.UUID) (*Reservation, error) {
	now := s.now().UTC()
	ok, err := s.store.IncrementIfBelow(ctx, userID, s.limit)
	if err != nil {
		return nil, err
	}
	if ok {
		return &Reservation{UserID: userID, Month: monthStart(now)}, nil
	}

	metrics.QuotaRejectionsTotal.Inc()
	status := s.status(s.limit, now)
	if state, err := s.store.Get(ctx, userID); err == nil {
		status = s.status(state.GenerationsUsed, now)
	}
	return nil, &ExceededError{Status: status}
}

// Refund returns a reserved generation for a request that did not complete.
// A reservation from a month whose counter was already reset is dropped.
func (s *Service) Refund(ctx context.Context, res *Reservation) error {
	refunded, err := s.store.DecrementIfResetBefore(ctx, res.UserID, nextMonthStart(res.Month))
	if err != nil {
		return fmt.Errorf("refunding generation: %w", err)
	}
	if !refunded {
		slog.Info("quota: refund skipped after monthly reset", "user_id", res.UserID, "month", res.Month.Format("2006-01"))
	}
	return nil
}

// Reject builds the error for a status that is already outside the quota.
func (s *Service) Reject(status *Status) error {
	metrics.QuotaRejectionsTotal.Inc()
	return &ExceededError{Status: status}
}

func (s *Service) status(used int, now time.Time) *Status {
	return &Status{
		GenerationsUsed:      used,
		GenerationsLimit:     s.limit,
		GenerationsRemaining: max(0, s.limit-used),
		WithinQuota:          used < s.limit,
		ResetDate:            nextMonthStart(now),
	}
}
