// Package repo holds the in-memory capsule list, the source of truth during a
// session. Every mutation writes the full list back to the store before
// returning, so memory and disk never diverge for longer than one call.
package repo

import (
	"encoding/json"
	"sync"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/store"
)

// Repository is the capsule collection, ordered by storage order. Guarded by
// a mutex: the web viewer reads it from HTTP goroutines.
type Repository struct {
	mu       sync.RWMutex
	st       store.Store
	capsules []capsule.Capsule
}

// New loads the capsule list from the store. An absent blob is an empty list.
func New(st store.Store) (*Repository, error) {
	data, ok, err := st.Load(store.KeyCapsules)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	r := &Repository{st: st}
	if ok {
		if err := json.Unmarshal(data, &r.capsules); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return r, nil
}

// List returns the capsules in storage order. The returned slice is a copy.
func (r *Repository) List() []capsule.Capsule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]capsule.Capsule, len(r.capsules))
	copy(out, r.capsules)
	return out
}

// Get returns the capsule with the given id, or NotFound.
func (r *Repository) Get(id string) (capsule.Capsule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.capsules {
		if c.ID == id {
			return c, nil
		}
	}
	return capsule.Capsule{}, errors.NewNotFound(id)
}

// Upsert replaces the capsule with a matching id, or appends if there is no
// match, then persists the full list.
func (r *Repository) Upsert(c capsule.Capsule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i := range r.capsules {
		if r.capsules[i].ID == c.ID {
			r.capsules[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		r.capsules = append(r.capsules, c)
	}
	return r.persist()
}

// Remove deletes the capsule with the given id and persists. Removing an
// unknown id is a no-op. The capsule's progress record is left in place.
func (r *Repository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.capsules {
		if r.capsules[i].ID == id {
			r.capsules = append(r.capsules[:i], r.capsules[i+1:]...)
			return r.persist()
		}
	}
	return nil
}

// persist writes the full list to the store.
func (r *Repository) persist() error {
	data, err := json.Marshal(r.capsules)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := r.st.Save(store.KeyCapsules, data); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
