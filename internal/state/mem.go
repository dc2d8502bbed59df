package state

import "sync"

// MemStore keeps the document in memory. It backs unit tests and the
// conformance harness, where each scenario gets a fresh isolated store.
//
// Load and Save exchange deep copies, so callers cannot mutate the stored
// document without going through Save.
type MemStore struct {
	mu sync.Mutex
	st *State
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored document, or a fresh empty state if
// nothing has been saved yet.
func (ms *MemStore) Load() *State {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.st == nil {
		return NewState()
	}
	return ms.st.Clone()
}

// Save replaces the stored document with a copy of st.
func (ms *MemStore) Save(st *State) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.st = st.Clone()
	return nil
}
