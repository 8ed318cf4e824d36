// Package scheduler holds the two bounded worker pools that fan a
// scrape run out over expansions and their cards.
//
// The expansion pool runs whole expansions; each expansion worker in
// turn drains a card pool over that expansion's card numbers. Both pools
// hand every network operation to the shared fetcher, so neither
// concurrency cap can push request issuance past the global rate
// limiter. Completion events at both levels tick the progress reporter.
//
// Failure isolation: one card's fatal outcome never stops its siblings,
// and one expansion's failed card-list fetch never stops other
// expansions. Results stream over channels in completion order.
package scheduler
