// Package metrics documents the Prometheus metrics exposed by the
// scraper. Metrics are defined promauto-style in the packages that own
// them to avoid circular dependencies; this package only holds the
// registry reference and the catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registerer used by all scraper metrics.
var Registry = prometheus.DefaultRegisterer

// Metrics catalog
//
// Rate limit (pkg/ratelimit):
//   - tcg_rate_limit_acquires_total (Counter): admission slots handed out
//   - tcg_rate_limit_wait_seconds (Histogram): time spent blocked on the limiter
//
// Fetch (internal/fetcher):
//   - tcg_fetches_total{kind, outcome} (Counter): fetches by kind
//     (expansion_list, card_list, card_detail) and outcome (success, fatal)
//   - tcg_fetch_retries_total{kind} (Counter): retry attempts by kind
//
// Example queries:
//
//   # Fetch failure rate
//   sum(rate(tcg_fetches_total{outcome="fatal"}[5m])) /
//   sum(rate(tcg_fetches_total[5m]))
//
//   # P95 limiter wait
//   histogram_quantile(0.95, rate(tcg_rate_limit_wait_seconds_bucket[5m]))
