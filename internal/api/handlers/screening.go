package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/internal/store"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// cacheInspector is implemented by caches that can report entry counts.
// The Redis-backed cache cannot, so the stats endpoint degrades there.
type cacheInspector interface {
	Stats() screener.CacheStats
}

// ScreeningHandler handles screening API endpoints
// ⭐ SSOT: screening API handlers live in this struct only
type ScreeningHandler struct {
	aggregator *screener.Aggregator
	cache      screener.Cache
	store      store.Store
	cfg        config.ScreeningConfig
	logger     *logger.Logger
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(agg *screener.Aggregator, cache screener.Cache, st store.Store, cfg config.ScreeningConfig, log *logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		aggregator: agg,
		cache:      cache,
		store:      st,
		cfg:        cfg,
		logger:     log,
	}
}

// ScreenResponse wraps the ranked screening results.
type ScreenResponse struct {
	Count   int                    `json:"count"`
	Results []screener.ScoredQuote `json:"results"`
}

// Screen runs the screening pipeline over the requested symbols.
// GET /api/screening?symbols=AAPL,MSFT&limit=10
func (h *ScreeningHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	symbols := h.cfg.TopSymbols
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}

	limit := h.cfg.MaxResults
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	results, err := h.aggregator.Screen(ctx, symbols, limit)
	if err != nil {
		h.logger.WithError(err).Error("Screening failed")
		respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	if _, err := h.store.AppendActivity(ctx, store.ActivityEvent{
		Kind:    "screening",
		Message: "Screened " + strconv.Itoa(len(results)) + " symbols",
	}); err != nil {
		h.logger.WithError(err).Warn("Failed to record screening activity")
	}

	respondJSON(w, http.StatusOK, ScreenResponse{
		Count:   len(results),
		Results: results,
	})
}

// CacheStats reports quote cache freshness.
// GET /api/screening/cache
func (h *ScreeningHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	inspector, ok := h.cache.(cacheInspector)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]string{
			"backend": "redis",
			"note":    "entry counts unavailable for the shared cache",
		})
		return
	}

	respondJSON(w, http.StatusOK, inspector.Stats())
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
