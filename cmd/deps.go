package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/card-cli/internal/config"
	"github.com/sells-group/card-cli/internal/db"
	"github.com/sells-group/card-cli/internal/grade"
	"github.com/sells-group/card-cli/internal/listings"
	"github.com/sells-group/card-cli/internal/match"
	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/resilience"
	"github.com/sells-group/card-cli/internal/store"
	"github.com/sells-group/card-cli/internal/valuation"
)

// listingSource is what the commands need from a listings collaborator.
type listingSource interface {
	valuation.CompSource
	valuation.ForSaleSource
	Search(ctx context.Context, query string) ([]model.Listing, error)
}

// newListingSource prefers the local fixture corpus over the HTTP API.
func newListingSource(c config.ListingsConfig) (listingSource, error) {
	switch {
	case c.FixturePath != "":
		src, err := listings.LoadFile(c.FixturePath, lex)
		if err != nil {
			return nil, err
		}
		return src, nil
	case c.BaseURL != "":
		guard := resilience.NewGuard("listings",
			resilience.FromRetryConfig(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs),
			resilience.FromCircuitConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs),
		)
		return listings.NewClient(c.BaseURL,
			listings.WithAPIKey(c.APIKey),
			listings.WithRateLimit(c.RatePerSec, c.Burst),
			listings.WithHTTPClient(&http.Client{Timeout: time.Duration(c.TimeoutSecs) * time.Second}),
			listings.WithGuard(guard),
		), nil
	default:
		return nil, eris.New("listings: set listings.base_url or listings.fixture_path")
	}
}

func valuationConfig(c config.ValuationConfig) valuation.Config {
	vc := valuation.DefaultConfig()
	if c.RecentWindowDays > 0 {
		vc.RecentWindow = time.Duration(c.RecentWindowDays) * 24 * time.Hour
	}
	if c.MinComps > 0 {
		vc.MinComps = c.MinComps
	}
	if c.AdjacentStep > 0 {
		vc.AdjacentStep = c.AdjacentStep
	}
	if c.AdjustPerPoint > 0 {
		vc.AdjustPerPoint = c.AdjustPerPoint
	}
	if c.StaleDays > 0 {
		vc.StaleAfter = time.Duration(c.StaleDays) * 24 * time.Hour
	}
	return vc
}

func newScorer(c config.MatchConfig) match.Scorer {
	s := match.DefaultScorer()
	if c.ExactThreshold > 0 {
		s.ExactThreshold = c.ExactThreshold
	}
	if c.CloseMin > 0 {
		s.CloseMin = c.CloseMin
	}
	if c.OverlapWeight > 0 {
		s.OverlapWeight = c.OverlapWeight
	}
	return s
}

func newModeler(c config.GradeConfig) grade.Modeler {
	m := grade.NewModeler()
	if c.PSA10Cap > 0 {
		m.PSA10Cap = c.PSA10Cap
	}
	if c.JitterMax > 0 {
		m.JitterMax = c.JitterMax
	}
	return m
}

func newEngine(src listingSource) *valuation.Engine {
	return valuation.NewEngine(src, src, lex, valuationConfig(cfg.Valuation))
}

func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, store.Config{
		Driver: cfg.Store.Driver,
		DSN:    cfg.Store.DSN,
		Pool:   db.PoolConfig{MaxConns: cfg.Store.MaxConns, MinConns: cfg.Store.MinConns},
	})
}
