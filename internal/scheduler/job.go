package scheduler

import (
	"context"
	"time"
)

// Job is one schedulable unit of background work.
// ⭐ SSOT: the job contract is defined here only
type Job interface {
	// Name returns the job name used in logs and lookups.
	Name() string

	// Schedule returns the cron expression, with a seconds field.
	Schedule() string

	// Run executes the job.
	Run(ctx context.Context) error
}

// Result records one job execution.
type Result struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// History keeps the recent executions of one job.
type History struct {
	Results []Result
}

// Add appends a result, keeping only the last 100.
func (h *History) Add(result Result) {
	h.Results = append(h.Results, result)
	if len(h.Results) > 100 {
		h.Results = h.Results[len(h.Results)-100:]
	}
}

// SuccessRate returns the fraction of successful runs, 0 when empty.
func (h *History) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results))
}
