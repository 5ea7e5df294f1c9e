package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wanderwise/account-service/internal/metrics"
	"github.com/wanderwise/account-service/internal/repository"
)

// retention keeps consumed and superseded tokens around briefly so support
// can inspect recent confirmation activity before rows disappear.
const retention = 24 * time.Hour

// Janitor periodically deletes confirmation tokens that can no longer be
// claimed: expired, consumed, or superseded. Claims check liveness
// themselves, so the sweep is hygiene, not correctness.
type Janitor struct {
	users    repository.UserRepository
	logger   *slog.Logger
	schedule cron.Schedule
}

func New(users repository.UserRepository, logger *slog.Logger, cronExpr string) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Janitor{
		users:    users,
		logger:   logger.With("component", "janitor"),
		schedule: schedule,
	}, nil
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started")

	for {
		next := j.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("janitor shut down")
			return
		case <-timer.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-retention)

	purged, err := j.users.PurgeStaleTokens(ctx, cutoff)
	if err != nil {
		j.logger.Error("janitor purge", "error", err)
		return
	}
	if purged > 0 {
		metrics.TokensPurgedTotal.Add(float64(purged))
		j.logger.Info("purged stale confirmation tokens", "count", purged)
	}
}
