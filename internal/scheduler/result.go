package scheduler

import (
	"context"

	"tcgscraper/pkg/models"
)

// CardFetcher is the throttled retrieval collaborator both scheduler
// levels drive. The production implementation is fetcher.Fetcher.
type CardFetcher interface {
	FetchCardList(ctx context.Context, expansion models.ExpansionID) ([]models.CardID, error)
	FetchCard(ctx context.Context, expansion models.ExpansionID, number models.CardID) (*models.CardRecord, error)
}

// CardResult is the outcome of fetching one card. Record is set on
// success; Err carries the fatal outcome otherwise. Every scheduled card
// produces exactly one CardResult unless the run is cancelled first.
type CardResult struct {
	Key    models.Key
	Record *models.CardRecord
	Err    error
}

// Failed reports whether this card's fetch ended in a fatal outcome
func (r CardResult) Failed() bool {
	return r.Err != nil
}

// ExpansionResult is one expansion's fully drained outcome. Err is set
// when the card-list fetch itself failed fatally; Cards is then empty.
type ExpansionResult struct {
	Expansion models.ExpansionID
	Cards     []CardResult
	Err       error
}
