// Package collision tracks dataset names during archive encoding and detects
// 64-bit hash collisions between them.
package collision

import (
	"fmt"

	"github.com/micellab/cmcfit/errs"
)

// Tracker records dataset names and their hashes while an archive is encoded.
// Index entries address datasets by hash alone, so two distinct names mapping
// to one hash cannot be represented and must be rejected.
type Tracker struct {
	names map[uint64]string // hash to name, for collision detection
	order []string          // names in insertion order, for the names payload
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
		order: make([]string, 0),
	}
}

// Track records a dataset name with its hash.
//
// Returns:
//   - ErrInvalidDatasetName if the name is empty
//   - ErrDatasetAlreadyStarted if the same name was tracked before
//   - ErrHashCollision if a different name already produced the same hash
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.ErrInvalidDatasetName
	}

	if existing, ok := t.names[hash]; ok {
		if existing == name {
			return fmt.Errorf("%w: dataset %q already added", errs.ErrDatasetAlreadyStarted, name)
		}

		return fmt.Errorf("%w: %q and %q both hash to 0x%016x", errs.ErrHashCollision, existing, name, hash)
	}

	t.names[hash] = name
	t.order = append(t.order, name)

	return nil
}

// Names returns the tracked names in the order they were added.
func (t *Tracker) Names() []string {
	return t.order
}

// Count returns the number of tracked datasets.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Reset clears all tracked names so the tracker can encode a new archive.
func (t *Tracker) Reset() {
	// Clear the map but keep its capacity.
	for k := range t.names {
		delete(t.names, k)
	}
	t.order = t.order[:0]
}
