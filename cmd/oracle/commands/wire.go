package commands

import (
	"fmt"

	"github.com/oraclewow/oracle-backend/internal/provider/alphavantage"
	"github.com/oraclewow/oracle-backend/internal/provider/fmp"
	"github.com/oraclewow/oracle-backend/internal/provider/yahoo"
	"github.com/oraclewow/oracle-backend/internal/ratelimit"
	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
	"github.com/oraclewow/oracle-backend/pkg/redis"
)

// screeningDeps bundles everything a command needs to run screenings.
type screeningDeps struct {
	cfg        *config.Config
	log        *logger.Logger
	aggregator *screener.Aggregator
	cache      screener.Cache
	redis      *redis.Client
}

// initScreening wires the full screening pipeline.
// ⭐ SSOT: provider priority order is fixed here
func initScreening() (*screeningDeps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Redis (optional shared cache)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	// 4. HTTP client and per-provider rate gates
	httpClient := httputil.New(log)
	limiter := ratelimit.New()

	// 5. Provider chain, primary first
	sources := []screener.Source{
		fmp.New(cfg.FMP, httpClient, limiter, log),
		alphavantage.New(cfg.AlphaVantage, httpClient, limiter, log),
		yahoo.New(cfg.Yahoo, httpClient, limiter, log),
	}

	// 6. Quote cache: shared Redis when enabled, else in-process
	var cache screener.Cache
	if redisClient.Enabled() {
		cache = screener.NewRedisCache(redisClient, cfg.Screening.CacheTTL, log)
	} else {
		cache = screener.NewMemoryCache(cfg.Screening.CacheTTL, log)
	}

	// 7. Aggregator
	agg := screener.NewAggregator(sources, cache, cfg.Screening.Workers, log)

	return &screeningDeps{
		cfg:        cfg,
		log:        log,
		aggregator: agg,
		cache:      cache,
		redis:      redisClient,
	}, nil
}
