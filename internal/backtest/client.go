// Package backtest drives portfolio backtests on the remote compute
// server. Jobs are asynchronous: submit, poll for status, then fetch
// results. The client owns that lifecycle as an explicit state machine.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// State is the client-side job lifecycle state.
type State string

// Lifecycle states. Terminal states are Completed, Failed, and TimedOut.
const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePending    State = "pending"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// SubmissionError means the job was never accepted by the server.
// The job holds no server-side state, so a resubmit is always safe.
type SubmissionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backtest submission failed: %v", e.Err)
	}
	return fmt.Sprintf("backtest submission rejected (status %d): %s", e.StatusCode, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// JobError means the server accepted the job but execution failed.
type JobError struct {
	RequestID string
	Message   string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("backtest %s failed: %s", e.RequestID, e.Message)
}

// TimeoutError means the job was still pending after the full polling
// budget. The job may still complete server-side later.
type TimeoutError struct {
	RequestID string
	Attempts  int
	Elapsed   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backtest %s timed out after %d polls (%s), the job may still finish server-side", e.RequestID, e.Attempts, e.Elapsed.Round(time.Second))
}

// Client runs backtest jobs against the remote server.
type Client struct {
	http         *httputil.Client
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	logger       *logger.Logger

	// OnState is invoked on every lifecycle transition. Optional.
	// Called from the polling goroutine, so handlers must be fast.
	OnState func(submissionID string, state State, status *Status)
}

// New creates a backtest client from configuration.
func New(cfg config.BacktestConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:         httpClient,
		baseURL:      cfg.BaseURL,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		logger:       log.WithField("module", "backtest"),
	}
}

// Run submits a job and blocks until it reaches a terminal state.
// It returns the full result on completion, or a typed error
// (SubmissionError, JobError, TimeoutError) describing how it ended.
func (c *Client) Run(ctx context.Context, req Request) (*Result, error) {
	submissionID := uuid.New().String()
	log := c.logger.WithField("submission_id", submissionID)

	c.transition(submissionID, StateSubmitting, nil)
	log.WithField("assets", len(req.Assets)).Info("Submitting backtest")

	accepted, syncResult, err := c.Submit(ctx, req)
	if err != nil {
		c.transition(submissionID, StateFailed, nil)
		return nil, err
	}

	// Small configurations may run synchronously server-side and answer
	// the submit call with a finished result.
	if syncResult != nil {
		log.Info("Backtest completed synchronously")
		c.transition(submissionID, StateCompleted, nil)
		return syncResult, nil
	}

	c.transition(submissionID, StatePending, &Status{RequestID: accepted.RequestID, Status: JobPending})
	log.WithField("request_id", accepted.RequestID).Info("Backtest accepted, polling")

	result, err := c.Await(ctx, submissionID, accepted.RequestID)
	if err != nil {
		return nil, err
	}

	c.transition(submissionID, StateCompleted, nil)
	return result, nil
}

// Submit posts the job. On asynchronous acceptance it returns the
// submit envelope; when the server answers with a finished result it
// returns that instead.
func (c *Client) Submit(ctx context.Context, req Request) (*SubmitResponse, *Result, error) {
	resp, err := c.http.PostJSON(ctx, c.baseURL+"/api/backtest/run", req)
	if err != nil {
		return nil, nil, &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, nil, &SubmissionError{Err: fmt.Errorf("read submit response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &SubmissionError{StatusCode: resp.StatusCode, Message: serverDetail(body)}
	}

	var envelope SubmitResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, &SubmissionError{Err: fmt.Errorf("decode submit response: %w", err)}
	}

	if envelope.RequestID != "" && envelope.Status == JobPending {
		return &envelope, nil, nil
	}

	// Not an async acceptance envelope; treat the body as a direct result.
	var result Result
	if err := json.Unmarshal(body, &result); err != nil || result.RequestID == "" {
		return nil, nil, &SubmissionError{StatusCode: resp.StatusCode, Message: "unrecognized submit response"}
	}

	return nil, &result, nil
}

// Await polls the job status until a terminal state, then fetches the
// results. The poll budget is pollInterval times maxAttempts.
func (c *Client) Await(ctx context.Context, submissionID, requestID string) (*Result, error) {
	log := c.logger.WithFields(map[string]interface{}{
		"submission_id": submissionID,
		"request_id":    requestID,
	})
	start := time.Now()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		status, err := c.Status(ctx, requestID)
		if err != nil {
			// A single flaky poll must not kill a long-running job.
			log.WithError(err).WithField("attempt", attempt).Warn("Status poll failed")
			continue
		}

		c.transition(submissionID, StatePending, status)
		log.WithFields(map[string]interface{}{
			"attempt":  attempt,
			"status":   status.Status,
			"progress": status.Progress,
		}).Debug("Polled status")

		switch status.Status {
		case JobCompleted:
			return c.Results(ctx, requestID)
		case JobFailed, JobCancelled:
			c.transition(submissionID, StateFailed, status)
			msg := status.Error
			if msg == "" {
				msg = status.Message
			}
			return nil, &JobError{RequestID: requestID, Message: msg}
		}
	}

	c.transition(submissionID, StateTimedOut, nil)
	return nil, &TimeoutError{RequestID: requestID, Attempts: c.maxAttempts, Elapsed: time.Since(start)}
}

// Status fetches the current job status.
func (c *Client) Status(ctx context.Context, requestID string) (*Status, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/backtest/status/"+requestID)
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status request returned %d: %s", resp.StatusCode, serverDetail(body))
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	return &status, nil
}

// Results fetches the finished job's results.
func (c *Client) Results(ctx context.Context, requestID string) (*Result, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/backtest/results/"+requestID)
	if err != nil {
		return nil, fmt.Errorf("results request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read results response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results request returned %d: %s", resp.StatusCode, serverDetail(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode results response: %w", err)
	}

	return &result, nil
}

func (c *Client) transition(submissionID string, state State, status *Status) {
	if c.OnState != nil {
		c.OnState(submissionID, state, status)
	}
}

// serverDetail extracts the FastAPI-style {"detail": "..."} message
// from an error body, falling back to the raw text.
func serverDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
