package store

import (
	"encoding/json"
	"fmt"
	"os"

	"tcgscraper/pkg/config"
	errs "tcgscraper/pkg/errors"
	"tcgscraper/pkg/models"
)

// Mapping is the persisted store: composite key (expansion, card number)
// to opaque card payload. The nested layout matches the output file of
// earlier versions of this tool, so old store files keep loading.
type Mapping map[models.ExpansionID]map[models.CardID]json.RawMessage

// Set inserts or replaces one record's payload under its composite key
func (m Mapping) Set(key models.Key, payload json.RawMessage) {
	cards := m[key.Expansion]
	if cards == nil {
		cards = make(map[models.CardID]json.RawMessage)
		m[key.Expansion] = cards
	}
	cards[key.Card] = payload
}

// Get returns the payload for one composite key
func (m Mapping) Get(key models.Key) (json.RawMessage, bool) {
	payload, ok := m[key.Expansion][key.Card]
	return payload, ok
}

// Count returns the number of records across all expansions
func (m Mapping) Count() int {
	n := 0
	for _, cards := range m {
		n += len(cards)
	}
	return n
}

// Load reads the store file at path. A missing file is an empty store;
// an unreadable or unparseable one is a corrupt_store error, never
// silently treated as empty.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Mapping), nil
		}
		return nil, errs.Wrap(errs.ErrorTypeCorruptStore, fmt.Sprintf("failed to read store file %s", path), err)
	}

	var mapping Mapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeCorruptStore, fmt.Sprintf("failed to parse store file %s", path), err)
	}
	if mapping == nil {
		mapping = make(Mapping)
	}

	return mapping, nil
}

// Merge combines an existing store with a new batch. In overwrite mode
// the result is exactly the incoming batch. In merge mode every incoming
// composite key replaces its existing entry and all other existing keys
// stay untouched. The inputs are never mutated, so merging is idempotent
// per key.
func Merge(existing, incoming Mapping, mode config.StoreMode) Mapping {
	if mode == config.StoreModeOverwrite {
		return clone(incoming)
	}

	result := clone(existing)
	for expansion, cards := range incoming {
		for card, payload := range cards {
			result.Set(models.Key{Expansion: expansion, Card: card}, payload)
		}
	}
	return result
}

func clone(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for expansion, cards := range m {
		copied := make(map[models.CardID]json.RawMessage, len(cards))
		for card, payload := range cards {
			copied[card] = payload
		}
		out[expansion] = copied
	}
	return out
}

// Save durably persists the mapping: write to a temporary file in the
// same directory, fsync, then atomically rename over the target. A crash
// mid-write leaves the previous store intact.
func Save(path string, mapping Mapping) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypePersist, "failed to create temporary store file", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(mapping); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypePersist, "failed to encode store", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypePersist, "failed to sync store file", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypePersist, "failed to close store file", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypePersist, "failed to replace store file", err)
	}

	return nil
}
