package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oraclewow/oracle-backend/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return "0 0 0 1 1 *" } // effectively never
func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.Nop())
	s.maxRetries = 1
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()

	if err := s.AddJob(&countingJob{name: "a"}); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := s.AddJob(&countingJob{name: "a"}); err == nil {
		t.Fatal("expected duplicate job error")
	}
}

func TestRunJobExecutesImmediately(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "a"}
	s.AddJob(job)

	if err := s.RunJob("a"); err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for job.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.RunJob("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestRunJobRecordsFailureAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "flaky", err: errors.New("boom")}
	s.AddJob(job)

	s.runJob(job)

	if got := job.runs.Load(); got != 2 {
		t.Errorf("runs = %d, want initial attempt plus one retry", got)
	}

	history, err := s.JobHistory("flaky")
	if err != nil {
		t.Fatalf("JobHistory() error = %v", err)
	}
	if len(history.Results) != 1 || history.Results[0].Success {
		t.Errorf("history = %+v, want one failed result", history.Results)
	}
	if history.SuccessRate() != 0 {
		t.Errorf("SuccessRate() = %v, want 0", history.SuccessRate())
	}
}

func TestHistoryKeepsLast100(t *testing.T) {
	h := &History{}
	for i := 0; i < 150; i++ {
		h.Add(Result{JobName: "a", Success: true})
	}
	if len(h.Results) != 100 {
		t.Errorf("len = %d, want 100", len(h.Results))
	}
	if h.SuccessRate() != 1.0 {
		t.Errorf("SuccessRate() = %v, want 1.0", h.SuccessRate())
	}
}
