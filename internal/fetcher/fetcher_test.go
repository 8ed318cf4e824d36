package fetcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/logger"
	"tcgscraper/pkg/models"
)

// countingLimiter records how many admission slots were handed out
type countingLimiter struct {
	acquires int32
}

func (l *countingLimiter) Acquire(ctx context.Context) error {
	atomic.AddInt32(&l.acquires, 1)
	return ctx.Err()
}

func (l *countingLimiter) Allow() bool {
	atomic.AddInt32(&l.acquires, 1)
	return true
}

func (l *countingLimiter) count() int {
	return int(atomic.LoadInt32(&l.acquires))
}

// fakeClient scripts per-call behavior for the fetcher
type fakeClient struct {
	expansions    []models.Expansion
	expansionsErr error

	// pages maps page number to card IDs; pageErrs maps page number to
	// a scripted error
	pages    map[int][]models.CardID
	pageErrs map[int]error

	detailErrs  []error // consumed one per call, nil means success
	detailCalls int32
}

func (c *fakeClient) Expansions(ctx context.Context) ([]models.Expansion, error) {
	return c.expansions, c.expansionsErr
}

func (c *fakeClient) CardListPage(ctx context.Context, expansion models.ExpansionID, page int) ([]models.CardID, error) {
	if err, ok := c.pageErrs[page]; ok {
		return nil, err
	}
	return c.pages[page], nil
}

func (c *fakeClient) CardDetail(ctx context.Context, expansion models.ExpansionID, number models.CardID) (*models.CardRecord, error) {
	call := atomic.AddInt32(&c.detailCalls, 1)
	if int(call) <= len(c.detailErrs) {
		if err := c.detailErrs[call-1]; err != nil {
			return nil, err
		}
	}
	return &models.CardRecord{Expansion: expansion, Number: number, Payload: []byte(`{}`)}, nil
}

func newTestFetcher(client SiteClient, limiter *countingLimiter) *Fetcher {
	f := New(client, limiter, time.Second, 3, logger.NewTestLogger())
	// Keep retries fast in tests
	f.backoff = &constantBackoff{}
	return f
}

type constantBackoff struct{}

func (constantBackoff) NextDelay(attempt int) time.Duration { return time.Millisecond }

func TestFetchCardSuccess(t *testing.T) {
	limiter := &countingLimiter{}
	f := newTestFetcher(&fakeClient{}, limiter)

	record, err := f.FetchCard(context.Background(), "E1", "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Number != "C1" {
		t.Errorf("Number = %s, want C1", record.Number)
	}
	if limiter.count() != 1 {
		t.Errorf("limiter acquired %d times, want 1", limiter.count())
	}
}

func TestFetchCardAcquiresTokenPerAttempt(t *testing.T) {
	limiter := &countingLimiter{}
	client := &fakeClient{
		detailErrs: []error{
			errs.New(errs.ErrorTypeTimeout, "slow"),
			errs.New(errs.ErrorTypeServerError, "boom"),
			nil,
		},
	}
	f := newTestFetcher(client, limiter)

	_, err := f.FetchCard(context.Background(), "E1", "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 failed attempts + 1 success, each behind its own token
	if limiter.count() != 3 {
		t.Errorf("limiter acquired %d times, want 3", limiter.count())
	}
}

func TestFetchCardFatalNotRetried(t *testing.T) {
	limiter := &countingLimiter{}
	client := &fakeClient{
		detailErrs: []error{errs.New(errs.ErrorTypeParsing, "bad html")},
	}
	f := newTestFetcher(client, limiter)

	_, err := f.FetchCard(context.Background(), "E1", "C1")
	if err == nil {
		t.Fatal("expected error")
	}
	if limiter.count() != 1 {
		t.Errorf("fatal errors must not be retried, got %d attempts", limiter.count())
	}
}

func TestFetchCardExhaustsRetries(t *testing.T) {
	transient := errs.New(errs.ErrorTypeTimeout, "always slow")
	client := &fakeClient{
		detailErrs: []error{transient, transient, transient, transient},
	}
	f := newTestFetcher(client, &countingLimiter{})

	_, err := f.FetchCard(context.Background(), "E2", "C3")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// The last transient error surfaces as the fatal outcome
	if !errors.Is(err, transient) {
		t.Errorf("exhaustion error should carry the last transient error, got %v", err)
	}
	if calls := atomic.LoadInt32(&client.detailCalls); calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestFetchCardListPagination(t *testing.T) {
	client := &fakeClient{
		pages: map[int][]models.CardID{
			1: {"C1", "C2"},
			2: {"C3"},
		},
		pageErrs: map[int]error{
			3: &errs.Error{Type: errs.ErrorTypeNotFound, Code: 404, Message: "no page 3"},
		},
	}
	f := newTestFetcher(client, &countingLimiter{})

	cards, err := f.FetchCardList(context.Background(), "E1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("got %d cards, want 3", len(cards))
	}
}

func TestFetchCardListStopsOnEmptyPage(t *testing.T) {
	client := &fakeClient{
		pages: map[int][]models.CardID{1: {"C1"}},
		// page 2 returns no cards and no error
	}
	f := newTestFetcher(client, &countingLimiter{})

	cards, err := f.FetchCardList(context.Background(), "E1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 {
		t.Errorf("got %d cards, want 1", len(cards))
	}
}

func TestFetchCardListFatalError(t *testing.T) {
	client := &fakeClient{
		pageErrs: map[int]error{1: errs.New(errs.ErrorTypeParsing, "unexpected markup")},
	}
	f := newTestFetcher(client, &countingLimiter{})

	_, err := f.FetchCardList(context.Background(), "E1")
	if err == nil {
		t.Fatal("a non-404 fatal list error must fail the expansion")
	}
}

func TestFetchExpansions(t *testing.T) {
	client := &fakeClient{
		expansions: []models.Expansion{{Code: "E1", Name: "First"}},
	}
	f := newTestFetcher(client, &countingLimiter{})

	expansions, err := f.FetchExpansions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expansions) != 1 || expansions[0].Code != "E1" {
		t.Errorf("unexpected expansions: %v", expansions)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newTestFetcher(&fakeClient{}, &countingLimiter{})
	_, err := f.FetchCard(ctx, "E1", "C1")
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
