// Package retry provides bounded retry with pluggable backoff for fetch
// operations.
//
// Transient failures (network errors, timeouts, 5xx responses) are retried
// with exponential backoff and jitter; classified errors from pkg/errors
// decide retryability themselves via errors.IsRetryable. Waits between
// attempts honor context cancellation.
package retry
