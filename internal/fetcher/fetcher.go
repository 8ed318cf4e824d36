package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
	"tcgscraper/pkg/ratelimit"
	"tcgscraper/pkg/retry"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tcg_fetches_total",
		Help: "Completed fetch operations by kind and outcome",
	}, []string{"kind", "outcome"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tcg_fetch_retries_total",
		Help: "Retry attempts by fetch kind",
	}, []string{"kind"})
)

// SiteClient is the page-level collaborator the fetcher throttles. The
// production implementation is tcg.Client.
type SiteClient interface {
	Expansions(ctx context.Context) ([]models.Expansion, error)
	CardListPage(ctx context.Context, expansion models.ExpansionID, page int) ([]models.CardID, error)
	CardDetail(ctx context.Context, expansion models.ExpansionID, number models.CardID) (*models.CardRecord, error)
}

// Fetcher performs one throttled retrieval at a time: a rate-limiter
// token is acquired before every network attempt, retries included, and
// each attempt runs under its own timeout. Transient failures are
// retried with exponential backoff; exhausting the attempt budget
// surfaces the last transient error to the caller.
type Fetcher struct {
	client      SiteClient
	limiter     ratelimit.Limiter
	timeout     time.Duration
	maxAttempts int
	backoff     retry.BackoffStrategy
	logger      logger.Logger
}

// New creates a Fetcher. maxRetries bounds attempts per operation (a
// value of 3 means up to 3 attempts total); timeout applies per attempt.
func New(client SiteClient, limiter ratelimit.Limiter, timeout time.Duration, maxRetries int, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		client:      client,
		limiter:     limiter,
		timeout:     timeout,
		maxAttempts: maxRetries,
		backoff:     retry.DefaultExponentialBackoff(),
		logger:      log,
	}
}

// SetBackoff replaces the retry backoff strategy
func (f *Fetcher) SetBackoff(b retry.BackoffStrategy) {
	f.backoff = b
}

// do runs op as a throttled, retried operation
func (f *Fetcher) do(ctx context.Context, kind string, op func(ctx context.Context) error) error {
	cfg := &retry.Config{
		MaxAttempts: f.maxAttempts,
		Backoff:     f.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      f.logger,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			retriesTotal.WithLabelValues(kind).Inc()
		},
	}

	err := retry.Do(func() error {
		// Every attempt pays the global admission toll, retries included.
		if err := f.limiter.Acquire(ctx); err != nil {
			return err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		return op(attemptCtx)
	}, cfg)

	outcome := "success"
	if err != nil {
		outcome = "fatal"
	}
	fetchesTotal.WithLabelValues(kind, outcome).Inc()
	return err
}

// FetchExpansions retrieves the expansion list page
func (f *Fetcher) FetchExpansions(ctx context.Context) ([]models.Expansion, error) {
	var expansions []models.Expansion
	err := f.do(ctx, "expansion_list", func(ctx context.Context) error {
		var opErr error
		expansions, opErr = f.client.Expansions(ctx)
		return opErr
	})
	return expansions, err
}

// FetchCardList walks an expansion's paginated search results and
// returns every card number. Pagination stops at a 404 or an empty
// page; any other fatal outcome fails the whole list.
func (f *Fetcher) FetchCardList(ctx context.Context, expansion models.ExpansionID) ([]models.CardID, error) {
	var all []models.CardID

	for page := 1; ; page++ {
		var numbers []models.CardID
		err := f.do(ctx, "card_list", func(ctx context.Context) error {
			var opErr error
			numbers, opErr = f.client.CardListPage(ctx, expansion, page)
			return opErr
		})
		if err != nil {
			if isNotFound(err) {
				f.logger.DebugWithFields("reached end of expansion", map[string]interface{}{
					"expansion": string(expansion),
					"page":      page,
				})
				break
			}
			return nil, err
		}
		if len(numbers) == 0 {
			break
		}
		all = append(all, numbers...)
	}

	f.logger.InfoWithFields("fetched card list", map[string]interface{}{
		"expansion": string(expansion),
		"cards":     len(all),
	})
	return all, nil
}

// FetchCard retrieves and parses one card's detail page
func (f *Fetcher) FetchCard(ctx context.Context, expansion models.ExpansionID, number models.CardID) (*models.CardRecord, error) {
	var record *models.CardRecord
	err := f.do(ctx, "card_detail", func(ctx context.Context) error {
		var opErr error
		record, opErr = f.client.CardDetail(ctx, expansion, number)
		return opErr
	})
	return record, err
}

func isNotFound(err error) bool {
	var classified *errs.Error
	return errors.As(err, &classified) && classified.Type == errs.ErrorTypeNotFound
}
