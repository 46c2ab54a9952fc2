package state

import (
	"github.com/oshokin/temp-sentinel/internal/domain/sensor"
)

// Store defines per-sensor state operations used by the detector.
// Get returns the zero-value state for keys that were never set or were
// cleared, so callers never need to distinguish "missing" from "fresh".
type Store interface {
	Get(key string) sensor.State
	Set(key string, state sensor.State)
	Clear(key string)
	Len() int
}

// MemoryStore holds sensor state in memory, one record per sensor id.
type MemoryStore struct {
	// records maps sensor id to its bookkeeping state.
	records map[string]sensor.State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]sensor.State),
	}
}

// Get returns a copy of the state for the key, or the zero-value state when
// the key is unseen. Copies keep callers from mutating stored records.
func (s *MemoryStore) Get(key string) sensor.State {
	return s.records[key].Clone()
}

// Set overwrites the state for the key.
func (s *MemoryStore) Set(key string, state sensor.State) {
	s.records[key] = state.Clone()
}

// Clear removes the key entirely, returning it to its unseen condition.
func (s *MemoryStore) Clear(key string) {
	delete(s.records, key)
}

// Len returns the number of sensors currently holding state.
func (s *MemoryStore) Len() int {
	return len(s.records)
}
