// Package store provides durable key/value blob storage for the capsule list
// and the progress map. Callers round-trip whole blobs; an absent key is an
// empty collection, never an error.
package store

// Fixed blob keys.
const (
	KeyCapsules = "capsules"
	KeyProgress = "progress"
)

// Store is the persistence boundary. Load returns (nil, false, nil) for an
// absent key. Save replaces the blob atomically.
type Store interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
}
