// Package ratelimit provides the single request-rate ceiling shared by
// every concurrent fetch in a scrape run.
//
// The limiter is a token bucket: capacity equals the configured
// requests-per-second, refilled continuously at that rate. A fresh bucket
// admits an instantaneous burst of up to one second's worth of requests;
// after that, sustained throughput is capped at the configured rate no
// matter how many workers are fetching.
//
// Both scheduler levels share one Limiter value, so the product of the
// card and expansion concurrency settings never exceeds the ceiling.
//
// Usage:
//
//	limiter, err := ratelimit.NewTokenBucket(10) // 10 req/s
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Acquire(ctx); err != nil {
//	    return err // context cancelled
//	}
//	// issue one request
package ratelimit
