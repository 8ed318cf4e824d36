package progress

import (
	"sync"

	"tcgscraper/pkg/models"
)

// ExpansionProgress is the card-level counter pair for one expansion.
type ExpansionProgress struct {
	CardsDone  int
	CardsTotal int
}

// Snapshot is a point-in-time copy of both counter levels.
type Snapshot struct {
	ExpansionsDone  int
	ExpansionsTotal int
	Expansions      map[models.ExpansionID]ExpansionProgress
}

// CardTotals sums the card counters across all expansions
func (s Snapshot) CardTotals() (done, total int) {
	for _, p := range s.Expansions {
		done += p.CardsDone
		total += p.CardsTotal
	}
	return done, total
}

// Reporter aggregates completion events from both scheduler levels into
// monotonic counters. Updates are O(1) under one mutex and never wait on
// consumers; readers poll Snapshot.
type Reporter struct {
	mu              sync.Mutex
	expansionsDone  int
	expansionsTotal int
	expansions      map[models.ExpansionID]*ExpansionProgress
}

// NewReporter creates an empty progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		expansions: make(map[models.ExpansionID]*ExpansionProgress),
	}
}

// ExpansionListKnown records how many expansions the run will process
func (r *Reporter) ExpansionListKnown(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expansionsTotal = total
}

// CardListKnown records how many cards one expansion will fetch
func (r *Reporter) CardListKnown(expansion models.ExpansionID, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.expansions[expansion]
	if p == nil {
		p = &ExpansionProgress{}
		r.expansions[expansion] = p
	}
	p.CardsTotal = total
}

// CardDone ticks the card counter for one expansion. Success and failure
// both count: every card produces exactly one completion.
func (r *Reporter) CardDone(expansion models.ExpansionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.expansions[expansion]
	if p == nil {
		p = &ExpansionProgress{}
		r.expansions[expansion] = p
	}
	p.CardsDone++
}

// ExpansionDone ticks the expansion counter
func (r *Reporter) ExpansionDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expansionsDone++
}

// Snapshot returns a copy of the current counters
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		ExpansionsDone:  r.expansionsDone,
		ExpansionsTotal: r.expansionsTotal,
		Expansions:      make(map[models.ExpansionID]ExpansionProgress, len(r.expansions)),
	}
	for id, p := range r.expansions {
		snap.Expansions[id] = *p
	}
	return snap
}
