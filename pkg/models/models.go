package models

import (
	"encoding/json"
	"fmt"
)

// ExpansionID identifies one expansion (a named collection of cards).
// Values come from the card list page and are never generated here.
type ExpansionID string

// CardID identifies one card, unique within its expansion.
type CardID string

// Key is the composite key identifying one persisted record. The pair
// must be globally unique across the store.
type Key struct {
	Expansion ExpansionID
	Card      CardID
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Expansion, k.Card)
}

// CardRecord is the result of fetching one card. Payload is whatever the
// detail-page parser extracted; the scheduling and persistence layers
// never look inside it. Records are immutable once produced.
type CardRecord struct {
	Expansion ExpansionID     `json:"expansion"`
	Number    CardID          `json:"card_number"`
	Payload   json.RawMessage `json:"payload"`
}

// Key returns the composite key for this record.
func (r *CardRecord) Key() Key {
	return Key{Expansion: r.Expansion, Card: r.Number}
}

// Expansion describes one expansion as listed on the card list page.
type Expansion struct {
	Code ExpansionID `json:"code"`
	Name string      `json:"name"`
}
