package jobs

import (
	"context"
	"time"

	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// ScreeningRefreshJob re-runs the screening pipeline over the default
// universe so dashboard requests land on a warm cache.
type ScreeningRefreshJob struct {
	aggregator *screener.Aggregator
	symbols    []string
	logger     *logger.Logger
}

// NewScreeningRefreshJob creates a new screening refresh job
func NewScreeningRefreshJob(agg *screener.Aggregator, symbols []string, log *logger.Logger) *ScreeningRefreshJob {
	return &ScreeningRefreshJob{
		aggregator: agg,
		symbols:    symbols,
		logger:     log,
	}
}

// Name returns the job name
func (j *ScreeningRefreshJob) Name() string {
	return "screening_refresh"
}

// Schedule returns the cron schedule (every 15 minutes)
// Slightly longer than the cache TTL so each refresh repopulates
// rather than hitting still-fresh entries.
func (j *ScreeningRefreshJob) Schedule() string {
	return "0 */15 * * * *"
}

// Run warms the cache for the configured universe
func (j *ScreeningRefreshJob) Run(ctx context.Context) error {
	// The full universe can take minutes behind the provider gates.
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	results, err := j.aggregator.Screen(ctx, j.symbols, 0)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(j.symbols),
		"scored":  len(results),
	}).Info("Screening cache refreshed")

	return nil
}
