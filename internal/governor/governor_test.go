package governor

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gatekeep/internal/state"
	"github.com/roach88/gatekeep/internal/testutil"
)

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// countingStore wraps a store and counts saves, so tests can assert which
// operations persisted.
type countingStore struct {
	state.Store
	saves int
}

func (cs *countingStore) Save(st *state.State) error {
	cs.saves++
	return cs.Store.Save(st)
}

// failingStore fails every save with a fixed error.
type failingStore struct {
	state.Store
	err error
}

func (fs *failingStore) Save(*state.State) error {
	return fs.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGovernor(store state.Store, limits Limits, clock Clock) *Governor {
	return New(store,
		WithLimits(limits),
		WithClock(clock),
		WithIDGenerator(testutil.NewSeqIDGenerator("call")),
		WithLogger(quietLogger()),
	)
}

func TestCheck_AllowsFreshIdentifier(t *testing.T) {
	cs := &countingStore{Store: state.NewMemStore()}
	g := newTestGovernor(cs, DefaultLimits(), testutil.NewManualClock(testEpoch))

	dec, err := g.Check("Plan", "")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Empty(t, dec.Code)
	assert.Equal(t, "Plan", dec.Identifier)
	assert.Equal(t, 0, cs.saves, "a plain allow must not persist")
}

func TestCheck_FrequencyDenial(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 3
	g := newTestGovernor(state.NewMemStore(), limits, clock)

	// Three calls of Build within ten seconds.
	for i := 0; i < 3; i++ {
		_, err := g.RecordCall("Build", "")
		require.NoError(t, err)
		clock.Advance(5 * time.Second)
	}

	dec, err := g.Check("Build", "")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeFrequencyExceeded, dec.Code)
	assert.Equal(t, 3, dec.Count)
	assert.Equal(t, 3, dec.Limit)
	assert.Contains(t, dec.Reason, "3 calls in last 60s >= max 3")

	// An unrelated identifier is still admitted.
	other, err := g.Check("Test", "")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestCheck_DepthDenial_SelfReferentialChain(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	limits := DefaultLimits()
	limits.MaxRecursionDepth = 2
	g := newTestGovernor(state.NewMemStore(), limits, clock)

	_, err := g.RecordCall("Plan", "")
	require.NoError(t, err)
	_, err = g.RecordCall("Explore", "Plan")
	require.NoError(t, err)
	rec, err := g.RecordCall("Plan", "Explore")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Depth, "second Plan sits one level below the first")

	// The next Plan would be depth 2 via Plan -> Explore -> Plan.
	dec, err := g.Check("Plan", "Explore")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeDepthExceeded, dec.Code)
	assert.Equal(t, 2, dec.Depth)
	assert.Equal(t, 2, dec.Limit)
	assert.Contains(t, dec.Reason, "recursion depth 2 >= max 2")
}

func TestCheck_CooldownLifecycle(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	limits.Cooldown = 300 * time.Second
	g := newTestGovernor(store, limits, clock)

	_, err := g.RecordCall("Deploy", "")
	require.NoError(t, err)

	// The check trips the frequency threshold and opens the circuit at T0.
	dec, err := g.Check("Deploy", "")
	require.NoError(t, err)
	require.False(t, dec.Allowed)
	require.Equal(t, CodeFrequencyExceeded, dec.Code)
	_, open := store.Load().OpenCircuits["Deploy"]
	require.True(t, open, "denial must persist the opened circuit")

	// T0+299s: still open, about one second remaining.
	clock.Advance(299 * time.Second)
	dec, err = g.Check("Deploy", "")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeCircuitOpen, dec.Code)
	assert.Equal(t, 1, dec.CooldownRemaining)

	// T0+301s: cooldown elapsed, circuit closes within the same check and
	// the call is re-evaluated normally.
	clock.Advance(2 * time.Second)
	dec, err = g.Check("Deploy", "")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	_, open = store.Load().OpenCircuits["Deploy"]
	assert.False(t, open, "the open entry must be gone after the lazy close")
}

func TestCheck_ClosesAtExactCooldownBoundary(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	limits.Cooldown = 300 * time.Second
	g := newTestGovernor(store, limits, clock)

	_, err := g.RecordCall("Deploy", "")
	require.NoError(t, err)
	_, err = g.Check("Deploy", "")
	require.NoError(t, err)

	// Denial requires elapsed strictly under the cooldown, so the first
	// check at exactly T0+300s closes the circuit.
	clock.Advance(300 * time.Second)
	dec, err := g.Check("Deploy", "")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestCheck_OpenCircuitDoesNotAffectOthers(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(state.NewMemStore(), limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)
	dec, err := g.Check("Build", "")
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	other, err := g.Check("Test", "")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRecordCall_AssignsIDsAndDepths(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	store := state.NewMemStore()
	g := newTestGovernor(store, DefaultLimits(), clock)

	first, err := g.RecordCall("Plan", "")
	require.NoError(t, err)
	assert.Equal(t, "call-1", first.ID)
	assert.Equal(t, 0, first.Depth)
	assert.Equal(t, testEpoch, first.Timestamp)

	second, err := g.RecordCall("Explore", "Plan")
	require.NoError(t, err)
	assert.Equal(t, "call-2", second.ID)
	assert.Equal(t, "Plan", second.Parent)
	assert.Equal(t, 0, second.Depth)

	third, err := g.RecordCall("Plan", "Explore")
	require.NoError(t, err)
	assert.Equal(t, 1, third.Depth, "chain Plan -> Explore -> Plan")

	st := store.Load()
	require.Len(t, st.Calls, 3)
	assert.Equal(t, []string{"call-1", "call-2", "call-3"},
		[]string{st.Calls[0].ID, st.Calls[1].ID, st.Calls[2].ID},
		"insertion order must survive persistence")
}

func TestRecordCall_SaveFailureSurfaced(t *testing.T) {
	saveErr := errors.New("disk full")
	fs := &failingStore{Store: state.NewMemStore(), err: saveErr}
	g := newTestGovernor(fs, DefaultLimits(), testutil.NewManualClock(testEpoch))

	rec, err := g.RecordCall("Build", "")
	require.ErrorIs(t, err, saveErr)
	assert.Equal(t, "Build", rec.Identifier, "the record is still reported")
}

func TestCheck_SaveFailureStillReturnsDecision(t *testing.T) {
	clock := testutil.NewManualClock(testEpoch)
	mem := state.NewMemStore()
	limits := DefaultLimits()
	limits.MaxCallsPerMinute = 1
	g := newTestGovernor(mem, limits, clock)

	_, err := g.RecordCall("Build", "")
	require.NoError(t, err)

	saveErr := errors.New("permission denied")
	failing := newTestGovernor(&failingStore{Store: mem, err: saveErr}, limits, clock)

	// Opening the circuit needs a save; the decision is valid anyway.
	dec, err := failing.Check("Build", "")
	require.ErrorIs(t, err, saveErr)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeFrequencyExceeded, dec.Code)
}

func TestCheck_FailOpenOnEmptyStore(t *testing.T) {
	g := newTestGovernor(state.NewMemStore(), DefaultLimits(), testutil.NewManualClock(testEpoch))

	// Nothing was ever saved; the empty document admits everything.
	dec, err := g.Check("Anything", "")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}
