package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner is the part of the repository needed to enforce retention.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Retention deletes audit entries older than a fixed number of days on a
// cron schedule.
type Retention struct {
	repo     Pruner
	days     int
	schedule string
	now      func() time.Time
}

func NewRetention(repo Pruner, days int, schedule string) *Retention {
	return &Retention{
		repo:     repo,
		days:     days,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start schedules pruning and blocks until ctx is cancelled. With a retention
// of zero days it returns immediately.
func (r *Retention) Start(ctx context.Context) error {
	if r.days <= 0 {
		slog.Info("audit retention disabled")
		return nil
	}

	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(r.schedule, func() {
		if _, err := r.PruneOnce(ctx); err != nil {
			slog.Error("pruning audit logs", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling audit pruning %q: %w", r.schedule, err)
	}

	slog.Info("audit retention started", "days", r.days, "schedule", r.schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// PruneOnce deletes entries past the retention window.
func (r *Retention) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -r.days)
	n, err := r.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	slog.Info("pruned audit logs", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// cronLogger routes cron's logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
