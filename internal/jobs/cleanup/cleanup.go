package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job clears published coordinates that have gone stale, catching profiles
// whose owner stopped sharing without a clean TurnOff (crash, dead session).
type Job struct {
	cleaner   staleLocationCleaner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type staleLocationCleaner interface {
	ClearStaleLocations(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(cleaner staleLocationCleaner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		cleaner:   cleaner,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.cleaner == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	rows, err := j.cleaner.ClearStaleLocations(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup stale locations: %w", err)
	}
	if rows > 0 {
		j.logger.Info("cleanup stale locations completed", zap.Int64("cleared", rows))
	}

	return nil
}

// RunEvery blocks, running the job on the interval until ctx is done.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup run failed", zap.Error(err))
			}
		}
	}
}
