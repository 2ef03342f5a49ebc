package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultRefreshTimeout bounds a single materialized view rebuild.
const DefaultRefreshTimeout = 2 * time.Minute

// ViewRefresher rebuilds the denormalized search view.
type ViewRefresher interface {
	RefreshSearchView(ctx context.Context) error
}

// ViewRefreshJob keeps the search view in step with catalog writes.
type ViewRefreshJob struct {
	refresher ViewRefresher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewViewRefreshJob creates a job that refreshes the search view on each tick.
func NewViewRefreshJob(refresher ViewRefresher, timeout time.Duration, log *zap.Logger) *ViewRefreshJob {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewRefreshJob{refresher: refresher, timeout: timeout, logger: log}
}

// ProcessJobs implements the JobProcessor interface
func (j *ViewRefreshJob) ProcessJobs(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	if err := j.refresher.RefreshSearchView(ctx); err != nil {
		return fmt.Errorf("refresh search view: %w", err)
	}
	j.logger.Debug("Search view refreshed", zap.Duration("took", time.Since(start)))
	return nil
}
