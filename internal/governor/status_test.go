package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gatekeep/internal/state"
	"github.com/roach88/gatekeep/internal/testutil"
)

func TestStatus_ReportsPerIdentifierView(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 2
	g := newTestGovernor(store, limits, clock)

	_, err := g.RecordCall("Plan", "")
	require.NoError(t, err)
	clock.Advance(90 * time.Second) // pushes the first record out of the window
	_, err = g.RecordCall("Plan", "")
	require.NoError(t, err)
	_, err = g.RecordCall("Build", "")
	require.NoError(t, err)
	_, err = g.RecordCall("Build", "")
	require.NoError(t, err)

	dec, err := g.Check("Build", "")
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	statuses := g.Status()
	require.Len(t, statuses, 2)

	build := statuses[0]
	assert.Equal(t, "Build", build.Identifier, "sorted by identifier")
	assert.Equal(t, 2, build.TotalCalls)
	assert.Equal(t, 2, build.RecentCalls)
	assert.True(t, build.CircuitOpen)
	assert.Equal(t, 300, build.CooldownRemaining)

	plan := statuses[1]
	assert.Equal(t, "Plan", plan.Identifier)
	assert.Equal(t, 2, plan.TotalCalls)
	assert.Equal(t, 1, plan.RecentCalls, "only the record inside the window counts")
	assert.Equal(t, 1, plan.Depth)
	assert.False(t, plan.CircuitOpen)
}

func TestStatus_NeverPersists(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	mem := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(mem, limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)
	_, err = g.Check("Build", "")
	require.NoError(t, err)

	cs := &countingStore{Store: mem}
	observer := newTestGovernor(cs, limits, clock)

	// Even with the circuit expired, status only reads.
	clock.Advance(time.Hour)
	statuses := observer.Status()
	require.NotEmpty(t, statuses)
	assert.Equal(t, 0, cs.saves)

	_, stillThere := mem.Load().OpenCircuits["Build"]
	assert.True(t, stillThere, "the expired entry is left for the next check to close")
}

func TestStatus_ExpiredCircuitReadsClosed(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(state.NewMemStore(), limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)
	_, err = g.Check("Build", "")
	require.NoError(t, err)

	clock.Advance(limits.Cooldown)
	for _, status := range g.Status() {
		if status.Identifier == "Build" {
			assert.False(t, status.CircuitOpen)
			assert.Equal(t, 0, status.CooldownRemaining)
		}
	}
}

func TestReset_ScopedToIdentifier(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(store, limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)
	_, err = g.RecordCall("Test", "")
	require.NoError(t, err)
	_, err = g.Check("Build", "")
	require.NoError(t, err)
	_, err = g.Check("Test", "")
	require.NoError(t, err)

	require.NoError(t, g.Reset("Build"))

	st := store.Load()
	_, buildOpen := st.OpenCircuits["Build"]
	assert.False(t, buildOpen)
	_, testOpen := st.OpenCircuits["Test"]
	assert.True(t, testOpen, "other identifiers are untouched")

	require.Len(t, st.Calls, 1)
	assert.Equal(t, "Test", st.Calls[0].Identifier)

	// Build is admitted again immediately.
	dec, err := g.Check("Build", "")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestResetAll_YieldsEmptyState(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(store, limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)
	_, err = g.Check("Build", "")
	require.NoError(t, err)

	require.NoError(t, g.ResetAll())

	st := store.Load()
	assert.Empty(t, st.Calls)
	assert.Empty(t, st.OpenCircuits)
	assert.Equal(t, testEpoch, st.LastCleanup)
	assert.Empty(t, g.Status())
}
