package scheduler

import (
	"context"
	"sync"

	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
	"tcgscraper/pkg/progress"
)

// CardScheduler fetches all cards of one expansion through a bounded
// pool, so a single large expansion can't monopolize the global rate
// limiter's burst capacity. One CardResult is emitted per card; a fatal
// outcome for one card never aborts its siblings.
type CardScheduler struct {
	fetcher     CardFetcher
	concurrency int
	reporter    *progress.Reporter
	logger      logger.Logger
}

// NewCardScheduler creates a card-level scheduler with the given
// in-flight cap.
func NewCardScheduler(f CardFetcher, concurrency int, reporter *progress.Reporter, log logger.Logger) *CardScheduler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &CardScheduler{
		fetcher:     f,
		concurrency: concurrency,
		reporter:    reporter,
		logger:      log,
	}
}

// Run fetches every card in cardIDs and streams results as they
// complete, in no particular order. The channel closes once all cards
// have an outcome or the context is cancelled; on cancellation the
// remaining cards are skipped rather than given synthetic outcomes.
func (s *CardScheduler) Run(ctx context.Context, expansion models.ExpansionID, cardIDs []models.CardID) <-chan CardResult {
	jobs := make(chan models.CardID)
	results := make(chan CardResult, s.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID, expansion, jobs, results)
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, id := range cardIDs {
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

func (s *CardScheduler) worker(ctx context.Context, id int, expansion models.ExpansionID, jobs <-chan models.CardID, results chan<- CardResult) {
	for number := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		record, err := s.fetcher.FetchCard(ctx, expansion, number)
		result := CardResult{
			Key:    models.Key{Expansion: expansion, Card: number},
			Record: record,
			Err:    err,
		}

		if err != nil {
			s.logger.WarnWithFields("card fetch failed", map[string]interface{}{
				"worker_id": id,
				"expansion": string(expansion),
				"card":      string(number),
				"error":     err.Error(),
			})
		}

		select {
		case results <- result:
			if s.reporter != nil {
				s.reporter.CardDone(expansion)
			}
		case <-ctx.Done():
			return
		}
	}
}
