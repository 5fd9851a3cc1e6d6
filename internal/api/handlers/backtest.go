package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/oraclewow/oracle-backend/internal/backtest"
	"github.com/oraclewow/oracle-backend/internal/store"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// BacktestHandler handles backtest API endpoints
// ⭐ SSOT: backtest API handlers live in this struct only
type BacktestHandler struct {
	// newJob builds a fresh client per request so each run can carry
	// its own OnState hook without racing other connections.
	newJob   func() *backtest.Client
	store    store.Store
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(newJob func() *backtest.Client, st store.Store, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		newJob: newJob,
		store:  st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is served from a different origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Run submits a backtest to the compute server and blocks until it
// reaches a terminal state.
// POST /api/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req backtest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Assets) == 0 {
		respondError(w, http.StatusBadRequest, "At least one asset is required")
		return
	}

	client := h.newJob()
	result, err := client.Run(ctx, req)
	if err != nil {
		h.respondRunError(w, r, err)
		return
	}

	h.recordRun(r, result)
	respondJSON(w, http.StatusOK, result)
}

// History returns the recent backtest runs recorded by this process.
// GET /api/backtest/history
func (h *BacktestHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.BacktestHistory(r.Context(), 20)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load backtest history")
		respondError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// watchFrame is one websocket message sent while a watched job runs.
type watchFrame struct {
	State  backtest.State   `json:"state"`
	Status *backtest.Status `json:"status,omitempty"`
	Result *backtest.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Watch runs a backtest and streams every lifecycle transition over a
// websocket. The first client message must be a backtest request; the
// final frame carries either the result or the error.
// GET /api/backtest/watch
func (h *BacktestHandler) Watch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req backtest.Request
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(watchFrame{State: backtest.StateFailed, Error: "invalid backtest request"})
		return
	}

	client := h.newJob()
	client.OnState = func(_ string, state backtest.State, status *backtest.Status) {
		if err := conn.WriteJSON(watchFrame{State: state, Status: status}); err != nil {
			h.logger.WithError(err).Debug("Watch write failed, client gone")
		}
	}

	result, err := client.Run(r.Context(), req)
	if err != nil {
		conn.WriteJSON(watchFrame{State: terminalState(err), Error: err.Error()})
		return
	}

	h.recordRun(r, result)
	conn.WriteJSON(watchFrame{State: backtest.StateCompleted, Result: result})
}

// recordRun appends a completed run to the history and activity feeds.
func (h *BacktestHandler) recordRun(r *http.Request, result *backtest.Result) {
	ctx := r.Context()

	if _, err := h.store.AppendBacktest(ctx, store.BacktestRecord{
		RequestID:   result.RequestID,
		Status:      backtest.JobCompleted,
		TotalReturn: result.Metrics.TotalReturn,
		SharpeRatio: result.Metrics.SharpeRatio,
	}); err != nil {
		h.logger.WithError(err).Warn("Failed to record backtest history")
	}

	if _, err := h.store.AppendActivity(ctx, store.ActivityEvent{
		Kind:    "backtest",
		Message: "Backtest " + result.RequestID + " completed",
	}); err != nil {
		h.logger.WithError(err).Warn("Failed to record backtest activity")
	}
}

func (h *BacktestHandler) respondRunError(w http.ResponseWriter, r *http.Request, err error) {
	var subErr *backtest.SubmissionError
	var jobErr *backtest.JobError
	var timeoutErr *backtest.TimeoutError

	switch {
	case errors.As(err, &subErr):
		status := http.StatusBadGateway
		if subErr.StatusCode == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		respondError(w, status, subErr.Error())
	case errors.As(err, &jobErr):
		h.logger.WithError(err).Warn("Backtest job failed")
		respondError(w, http.StatusUnprocessableEntity, jobErr.Error())
	case errors.As(err, &timeoutErr):
		respondError(w, http.StatusGatewayTimeout, timeoutErr.Error())
	default:
		h.logger.WithError(err).Error("Backtest run failed")
		respondError(w, http.StatusInternalServerError, "Backtest run failed")
	}
}

// terminalState maps a run error to the lifecycle state it ended in.
func terminalState(err error) backtest.State {
	var timeoutErr *backtest.TimeoutError
	if errors.As(err, &timeoutErr) {
		return backtest.StateTimedOut
	}
	return backtest.StateFailed
}
