package jobs

import (
	"context"

	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// CachePurgeJob evicts expired quotes from the screening cache.
type CachePurgeJob struct {
	cache  screener.Cache
	logger *logger.Logger
}

// NewCachePurgeJob creates a new cache purge job
func NewCachePurgeJob(cache screener.Cache, log *logger.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CachePurgeJob) Name() string {
	return "cache_purge"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CachePurgeJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache purge
func (j *CachePurgeJob) Run(ctx context.Context) error {
	count := j.cache.PurgeExpired(ctx)
	if count > 0 {
		j.logger.WithField("removed", count).Info("Quote cache purged")
	}
	return nil
}
