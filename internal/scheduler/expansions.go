package scheduler

import (
	"context"
	"sync"

	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
	"tcgscraper/pkg/progress"
)

// ExpansionScheduler drives one CardScheduler per selected expansion
// through its own bounded pool. The two concurrency caps compose
// multiplicatively for total in-flight fetches; the shared rate limiter
// below the fetcher remains the true global ceiling.
type ExpansionScheduler struct {
	fetcher         CardFetcher
	concurrency     int
	cardConcurrency int
	reporter        *progress.Reporter
	logger          logger.Logger
}

// NewExpansionScheduler creates the top-level scheduler
func NewExpansionScheduler(f CardFetcher, expansionConcurrency, cardConcurrency int, reporter *progress.Reporter, log logger.Logger) *ExpansionScheduler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ExpansionScheduler{
		fetcher:         f,
		concurrency:     expansionConcurrency,
		cardConcurrency: cardConcurrency,
		reporter:        reporter,
		logger:          log,
	}
}

// Run processes every selected expansion and streams one ExpansionResult
// per expansion as its card stream drains, in no particular order. A
// fatal card-list fetch marks that expansion failed without aborting its
// siblings. The channel closes when all expansions have an outcome or
// the context is cancelled.
func (s *ExpansionScheduler) Run(ctx context.Context, expansionIDs []models.ExpansionID) <-chan ExpansionResult {
	if s.reporter != nil {
		s.reporter.ExpansionListKnown(len(expansionIDs))
	}

	jobs := make(chan models.ExpansionID)
	results := make(chan ExpansionResult, s.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range expansionIDs {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (s *ExpansionScheduler) worker(ctx context.Context, jobs <-chan models.ExpansionID, results chan<- ExpansionResult) {
	for expansion := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := s.processExpansion(ctx, expansion)

		select {
		case results <- result:
			if s.reporter != nil {
				s.reporter.ExpansionDone()
			}
		case <-ctx.Done():
			return
		}
	}
}

// processExpansion fetches one expansion's card list, then drains a
// CardScheduler over it.
func (s *ExpansionScheduler) processExpansion(ctx context.Context, expansion models.ExpansionID) ExpansionResult {
	s.logger.InfoWithFields("starting expansion", map[string]interface{}{
		"expansion": string(expansion),
	})

	cardIDs, err := s.fetcher.FetchCardList(ctx, expansion)
	if err != nil {
		s.logger.ErrorWithFields("card list fetch failed", map[string]interface{}{
			"expansion": string(expansion),
			"error":     err.Error(),
		})
		return ExpansionResult{Expansion: expansion, Err: err}
	}

	if s.reporter != nil {
		s.reporter.CardListKnown(expansion, len(cardIDs))
	}

	cards := NewCardScheduler(s.fetcher, s.cardConcurrency, s.reporter, s.logger)
	collected := make([]CardResult, 0, len(cardIDs))
	for result := range cards.Run(ctx, expansion, cardIDs) {
		collected = append(collected, result)
	}

	s.logger.InfoWithFields("finished expansion", map[string]interface{}{
		"expansion": string(expansion),
		"cards":     len(collected),
	})

	return ExpansionResult{Expansion: expansion, Cards: collected}
}
