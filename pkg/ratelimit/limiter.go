package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	acquiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tcg_rate_limit_acquires_total",
		Help: "Admission slots handed out by the global rate limiter",
	})
	acquireWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tcg_rate_limit_wait_seconds",
		Help:    "Time callers spent blocked waiting for an admission slot",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	})
)

// Limiter is the global admission gate shared by all concurrent fetch
// attempts. Acquire blocks until one slot is available.
//
// Ordering between blocked callers is best-effort, not FIFO: slots are
// handed out in the order reservations reach the limiter's internal lock,
// which ties the winner of a tie to goroutine scheduling. This only
// affects latency of individual fetches, never which fetches run.
type Limiter interface {
	// Acquire blocks until a slot is available or ctx is cancelled.
	Acquire(ctx context.Context) error
	// Allow reports whether a slot is immediately available, consuming
	// it if so.
	Allow() bool
}

// TokenBucket caps sustained throughput at rps requests/sec while
// admitting bursts up to rps, refilling continuously at rps tokens/sec.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates the shared token bucket. rps must be positive.
func NewTokenBucket(rps int) (*TokenBucket, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %d", rps)
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Acquire blocks until a token is available
func (tb *TokenBucket) Acquire(ctx context.Context) error {
	start := time.Now()
	if err := tb.limiter.Wait(ctx); err != nil {
		return err
	}
	acquireWaitSeconds.Observe(time.Since(start).Seconds())
	acquiresTotal.Inc()
	return nil
}

// Allow consumes a token if one is immediately available
func (tb *TokenBucket) Allow() bool {
	ok := tb.limiter.Allow()
	if ok {
		acquiresTotal.Inc()
	}
	return ok
}

// Rate returns the configured requests per second
func (tb *TokenBucket) Rate() int {
	return int(tb.limiter.Limit())
}
