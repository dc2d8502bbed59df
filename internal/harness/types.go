package harness

// TraceEvent captures one executed step. Field order matters: golden files
// compare the serialized form byte-for-byte.
type TraceEvent struct {
	// T is the clock offset from the scenario epoch, e.g. "0s" or "5m1s".
	T string `json:"t"`

	// Type is the operation: record, check, reset, reset_all, advance.
	Type string `json:"type"`

	Identifier string `json:"identifier,omitempty"`
	Parent     string `json:"parent,omitempty"`

	// Depth is the recursion depth assigned to a record step.
	Depth *int `json:"depth,omitempty"`

	// Allowed, Code, and Reason carry the decision of a check step.
	Allowed *bool  `json:"allowed,omitempty"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// Seconds is the whole seconds an advance step moved the clock.
	Seconds int `json:"seconds,omitempty"`
}

// Result holds a scenario execution outcome.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool

	// Trace lists every executed step in order.
	Trace []TraceEvent

	// Errors lists expect-clause mismatches.
	Errors []string
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records an expectation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

// Snapshot is the serialized form compared against golden files.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}
