// Package progress tracks per-capsule mastery: which cards the user knows and
// the best quiz score. Records are created lazily on the first mark or
// submission and are deliberately not removed when a capsule is deleted, so
// recreating a capsule with the same cards picks its history back up.
package progress

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/store"
)

// Record is the persisted mastery state for one capsule.
type Record struct {
	// Known holds card identifiers the user has marked known, in mark order.
	Known []string `json:"known"`

	// BestScore is the best quiz percentage, nil until the first submission.
	// It only ever increases.
	BestScore *int `json:"best_score,omitempty"`
}

// Knows reports whether the card identifier is in the known set.
func (r Record) Knows(cardID string) bool {
	return slices.Contains(r.Known, cardID)
}

// Tracker is the progress map, keyed by capsule id. Guarded by a mutex for
// the same reason as the repository: the web viewer reads it concurrently.
type Tracker struct {
	mu      sync.RWMutex
	st      store.Store
	records map[string]Record
}

// New loads the progress map from the store. An absent blob is an empty map.
func New(st store.Store) (*Tracker, error) {
	data, ok, err := st.Load(store.KeyProgress)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	t := &Tracker{st: st, records: make(map[string]Record)}
	if ok {
		if err := json.Unmarshal(data, &t.records); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return t, nil
}

// Get returns the record for a capsule, or an empty default. It never creates
// a stored entry; only the mutating calls do.
func (t *Tracker) Get(capsuleID string) Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[capsuleID]
	if !ok {
		return Record{}
	}
	rec.Known = slices.Clone(rec.Known)
	return rec
}

// MarkCard adds the card to the capsule's known set when known is true and
// removes it when false. Both directions are idempotent. The full map is
// persisted before returning.
func (t *Tracker) MarkCard(capsuleID, cardID string, known bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.records[capsuleID]

	if known {
		if !slices.Contains(rec.Known, cardID) {
			rec.Known = append(rec.Known, cardID)
		}
	} else {
		rec.Known = slices.DeleteFunc(rec.Known, func(id string) bool {
			return id == cardID
		})
	}

	t.records[capsuleID] = rec
	return t.persist()
}

// RecordQuizScore updates the capsule's best score if percentage beats the
// stored value (or none is stored yet). Lower attempts leave it unchanged.
func (t *Tracker) RecordQuizScore(capsuleID string, percentage int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.records[capsuleID]

	if rec.BestScore == nil || percentage > *rec.BestScore {
		rec.BestScore = &percentage
	}

	t.records[capsuleID] = rec
	return t.persist()
}

// persist writes the full progress map to the store.
func (t *Tracker) persist() error {
	data, err := json.Marshal(t.records)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := t.st.Save(store.KeyProgress, data); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
