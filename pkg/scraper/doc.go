// Package scraper is the orchestrator: given a selection of expansion
// codes and a configuration it drives the whole run — load the existing
// store, fan out over expansions and cards under the global rate
// ceiling, collect records and failures, merge, and atomically persist.
//
// Callers poll Progress() for two-level counters while Run is in flight
// and read the returned Result for the written-record count and the
// failures list. Run never exits the process on partial failure.
package scraper
