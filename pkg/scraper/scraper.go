package scraper

import (
	"context"

	"tcgscraper/internal/fetcher"
	"tcgscraper/internal/scheduler"
	"tcgscraper/pkg/config"
	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
	"tcgscraper/pkg/progress"
	"tcgscraper/pkg/ratelimit"
	"tcgscraper/pkg/store"
	"tcgscraper/pkg/tcg"
)

// Fetcher is the throttled retrieval surface the orchestrator schedules
// over.
type Fetcher interface {
	scheduler.CardFetcher
	FetchExpansions(ctx context.Context) ([]models.Expansion, error)
}

// Failure identifies one identifier that could not be fetched. Card is
// empty when the expansion's card-list fetch itself failed.
type Failure struct {
	Expansion models.ExpansionID
	Card      models.CardID
	Err       error
}

// Result summarizes one completed run
type Result struct {
	RecordsWritten int
	Failures       []Failure
}

// Scraper wires the rate limiter, fetcher, schedulers, progress
// reporter, and merge store into one run.
type Scraper struct {
	cfg      *config.Config
	fetcher  Fetcher
	reporter *progress.Reporter
	logger   logger.Logger
}

// New creates a Scraper from a validated configuration
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	limiter, err := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	client := tcg.NewClient(cfg.Fetch.BaseURL, cfg.Fetch.UserAgent, log)
	f := fetcher.New(client, limiter, cfg.Fetch.Timeout, cfg.RateLimit.MaxRetries, log)

	return &Scraper{
		cfg:      cfg,
		fetcher:  f,
		reporter: progress.NewReporter(),
		logger:   log,
	}, nil
}

// Progress exposes the run's progress counters for polling by the UI
func (s *Scraper) Progress() *progress.Reporter {
	return s.reporter
}

// ListExpansions fetches the available expansions from the site
func (s *Scraper) ListExpansions(ctx context.Context) ([]models.Expansion, error) {
	return s.fetcher.FetchExpansions(ctx)
}

// Run scrapes the selected expansions and persists the outcome. Per-item
// failures are collected into the Result, never aborting the run; only
// store load/save errors fail it outright. On cancellation the schedulers
// drain gracefully and everything already collected is still merged and
// saved before the context error is returned alongside the Result.
func (s *Scraper) Run(ctx context.Context, expansionIDs []models.ExpansionID) (*Result, error) {
	// Load before any fetching: merging against an unreadable store is
	// unsafe, so a corrupt file must fail fast. Overwrite mode never
	// reads the old file.
	existing := make(store.Mapping)
	if s.cfg.Store.Mode == config.StoreModeMerge {
		var err error
		existing, err = store.Load(s.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
	}

	s.logger.InfoWithFields("starting scrape", map[string]interface{}{
		"expansions":  len(expansionIDs),
		"rate":        s.cfg.RateLimit.RequestsPerSecond,
		"mode":        string(s.cfg.Store.Mode),
		"store_path":  s.cfg.Store.Path,
		"concurrency": s.cfg.Fetch.ExpansionConcurrency * s.cfg.Fetch.CardConcurrency,
	})

	sched := scheduler.NewExpansionScheduler(
		s.fetcher,
		s.cfg.Fetch.ExpansionConcurrency,
		s.cfg.Fetch.CardConcurrency,
		s.reporter,
		s.logger,
	)

	incoming := make(store.Mapping)
	var failures []Failure

	for result := range sched.Run(ctx, expansionIDs) {
		if result.Err != nil {
			failures = append(failures, Failure{Expansion: result.Expansion, Err: result.Err})
			continue
		}
		for _, card := range result.Cards {
			if card.Failed() {
				failures = append(failures, Failure{
					Expansion: card.Key.Expansion,
					Card:      card.Key.Card,
					Err:       card.Err,
				})
				continue
			}
			incoming.Set(card.Key, card.Record.Payload)
		}
	}

	cancelled := ctx.Err()

	merged := store.Merge(existing, incoming, s.cfg.Store.Mode)
	if err := store.Save(s.cfg.Store.Path, merged); err != nil {
		return nil, err
	}

	result := &Result{
		RecordsWritten: incoming.Count(),
		Failures:       failures,
	}

	s.logger.InfoWithFields("scrape finished", map[string]interface{}{
		"records_written": result.RecordsWritten,
		"failures":        len(failures),
		"store_total":     merged.Count(),
		"cancelled":       cancelled != nil,
	})

	return result, cancelled
}
