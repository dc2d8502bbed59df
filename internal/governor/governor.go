package governor

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gatekeep/internal/state"
)

// Window is the fixed look-back duration bounding which records count
// toward frequency and depth.
const Window = 60 * time.Second

// Default limits, fixed at construction and not caller-mutable at runtime.
const (
	DefaultMaxRecursionDepth = 5
	DefaultMaxCallsPerMinute = 10
	DefaultCooldown          = 5 * time.Minute
	DefaultCleanupInterval   = time.Hour
)

// Limits holds the governor's fixed thresholds.
type Limits struct {
	// MaxRecursionDepth denies a call once its reconstructed chain depth
	// would reach this value.
	MaxRecursionDepth int

	// MaxCallsPerMinute denies a call once the identifier has this many
	// records inside the trailing window.
	MaxCallsPerMinute int

	// Cooldown is how long an opened circuit stays open, and also the
	// retention horizon for garbage collection.
	Cooldown time.Duration

	// CleanupInterval gates how often a garbage-collection pass runs.
	CleanupInterval time.Duration
}

// DefaultLimits returns the default thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		MaxCallsPerMinute: DefaultMaxCallsPerMinute,
		Cooldown:          DefaultCooldown,
		CleanupInterval:   DefaultCleanupInterval,
	}
}

// IDGenerator produces record IDs for the call log.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 record IDs.
//
// Panics if UUID generation fails (should never happen in practice).
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Governor is the admission checker and recorder. Construct with New;
// the zero value is not usable.
type Governor struct {
	store  state.Store
	clock  Clock
	idgen  IDGenerator
	limits Limits
	logger *slog.Logger
}

// Option configures a Governor.
type Option func(*Governor)

// WithLimits overrides the default thresholds.
func WithLimits(l Limits) Option {
	return func(g *Governor) { g.limits = l }
}

// WithClock overrides the system clock. Used by tests and the harness.
func WithClock(c Clock) Option {
	return func(g *Governor) { g.clock = c }
}

// WithIDGenerator overrides the UUIDv7 record-ID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(g *Governor) { g.idgen = gen }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Governor) { g.logger = l }
}

// New creates a governor over the given store with default limits, the
// system clock, and UUIDv7 record IDs.
func New(store state.Store, opts ...Option) *Governor {
	g := &Governor{
		store:  store,
		clock:  SystemClock{},
		idgen:  UUIDv7Generator{},
		limits: DefaultLimits(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

// Limits returns the configured thresholds.
func (g *Governor) Limits() Limits {
	return g.limits
}

// Check decides whether a call of identifier may be admitted.
//
// The parent identifier is accepted for signature symmetry with RecordCall;
// the depth scan derives the chain from recorded history, not from the
// caller's claim.
//
// The returned error reports a persistence-write failure only. The
// decision is valid either way; callers may retry the save, alert, or
// proceed degraded.
func (g *Governor) Check(identifier, parent string) (Decision, error) {
	identifier = NormalizeIdentifier(identifier)
	_ = parent

	now := g.clock.Now()
	st := g.load(now)
	dirty := g.cleanup(st, now)

	if openedAt, open := st.OpenCircuits[identifier]; open {
		if elapsed := now.Sub(openedAt); elapsed < g.limits.Cooldown {
			return denyCooldown(identifier, remainingSeconds(g.limits.Cooldown-elapsed)),
				g.persistIfDirty(st, dirty)
		}
		// Cooldown elapsed: the circuit closes lazily and the call is
		// re-evaluated against the thresholds within this same check.
		delete(st.OpenCircuits, identifier)
		dirty = true
	}

	if depth := chainDepth(st.Calls, identifier, now); depth >= g.limits.MaxRecursionDepth {
		st.OpenCircuits[identifier] = now
		return denyDepth(identifier, depth, g.limits.MaxRecursionDepth), g.persist(st)
	}

	if count := frequency(st.Calls, identifier, now); count >= g.limits.MaxCallsPerMinute {
		st.OpenCircuits[identifier] = now
		return denyFrequency(identifier, count, g.limits.MaxCallsPerMinute), g.persist(st)
	}

	return allow(identifier), g.persistIfDirty(st, dirty)
}

// RecordCall appends a call event to history, computing its recursion
// depth at insertion time, and persists the document. It does not consult
// the admission thresholds: checking and recording are independent by
// contract.
//
// The returned error reports a persistence-write failure only; the record
// describes what would have been saved.
func (g *Governor) RecordCall(identifier, parent string) (state.CallRecord, error) {
	identifier = NormalizeIdentifier(identifier)
	parent = NormalizeIdentifier(parent)

	now := g.clock.Now()
	st := g.load(now)
	g.cleanup(st, now)

	rec := state.CallRecord{
		ID:         g.idgen.Generate(),
		Identifier: identifier,
		Parent:     parent,
		Timestamp:  now,
		Depth:      chainDepth(st.Calls, identifier, now),
	}
	st.Calls = append(st.Calls, rec)

	return rec, g.persist(st)
}

// load fetches the document, lazily initializing LastCleanup on first
// access so a fresh document does not trigger an immediate GC pass.
func (g *Governor) load(now time.Time) *state.State {
	st := g.store.Load()
	if st.LastCleanup.IsZero() {
		st.LastCleanup = now
	}
	return st
}

func (g *Governor) persist(st *state.State) error {
	if err := g.store.Save(st); err != nil {
		g.logger.Warn("state save failed, continuing degraded", "error", err)
		return err
	}
	return nil
}

func (g *Governor) persistIfDirty(st *state.State, dirty bool) error {
	if !dirty {
		return nil
	}
	return g.persist(st)
}

// remainingSeconds rounds a remaining cooldown up to whole seconds, so one
// second before expiry still reads as 1s remaining.
func remainingSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
