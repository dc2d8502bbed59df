package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_EmptyLoad(t *testing.T) {
	ms := NewMemStore()
	st := ms.Load()
	assert.Empty(t, st.Calls)
	assert.Empty(t, st.OpenCircuits)
}

func TestMemStore_RoundTrip(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := NewMemStore()

	st := NewState()
	st.Calls = append(st.Calls, CallRecord{ID: "call-1", Identifier: "Plan", Timestamp: at})
	st.OpenCircuits["Build"] = at
	st.LastCleanup = at
	require.NoError(t, ms.Save(st))

	got := ms.Load()
	assert.Equal(t, st.Calls, got.Calls)
	assert.Equal(t, st.OpenCircuits, got.OpenCircuits)
	assert.Equal(t, at, got.LastCleanup)
}

func TestMemStore_LoadIsIsolatedCopy(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := NewMemStore()

	st := NewState()
	st.Calls = append(st.Calls, CallRecord{ID: "call-1", Identifier: "Plan", Timestamp: at})
	require.NoError(t, ms.Save(st))

	// Mutating what Save was given or what Load returned must not leak
	// into the store.
	st.Calls[0].Identifier = "Mutated"
	loaded := ms.Load()
	loaded.OpenCircuits["Leak"] = at

	fresh := ms.Load()
	assert.Equal(t, "Plan", fresh.Calls[0].Identifier)
	assert.NotContains(t, fresh.OpenCircuits, "Leak")
}
