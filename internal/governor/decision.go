package governor

import "fmt"

// DenialCode categorizes why a check refused admission.
type DenialCode string

const (
	// CodeDepthExceeded means the reconstructed recursion depth reached
	// the configured maximum.
	CodeDepthExceeded DenialCode = "DEPTH_EXCEEDED"

	// CodeFrequencyExceeded means the identifier's call count in the
	// trailing window reached the per-minute maximum.
	CodeFrequencyExceeded DenialCode = "FREQUENCY_EXCEEDED"

	// CodeCircuitOpen means the identifier's circuit is open and the
	// cooldown has not yet elapsed.
	CodeCircuitOpen DenialCode = "CIRCUIT_OPEN"
)

// Decision is the outcome of a check. Denial is normal control flow, not
// an error: the structured fields let an operator distinguish legitimate
// deep recursion from a suspected infinite loop.
type Decision struct {
	Identifier string     `json:"identifier"`
	Allowed    bool       `json:"allowed"`
	Code       DenialCode `json:"code,omitempty"`
	Reason     string     `json:"reason,omitempty"`

	// Depth carries the reconstructed chain depth for DEPTH_EXCEEDED,
	// Count the windowed call count for FREQUENCY_EXCEEDED, and Limit
	// the breached threshold for either.
	Depth int `json:"depth,omitempty"`
	Count int `json:"count,omitempty"`
	Limit int `json:"limit,omitempty"`

	// CooldownRemaining is the whole seconds left before an open circuit
	// becomes eligible to close. Set for CIRCUIT_OPEN denials.
	CooldownRemaining int `json:"cooldown_remaining,omitempty"`
}

func allow(identifier string) Decision {
	return Decision{Identifier: identifier, Allowed: true}
}

func denyDepth(identifier string, depth, limit int) Decision {
	return Decision{
		Identifier: identifier,
		Code:       CodeDepthExceeded,
		Reason:     fmt.Sprintf("recursion depth %d >= max %d", depth, limit),
		Depth:      depth,
		Limit:      limit,
	}
}

func denyFrequency(identifier string, count, limit int) Decision {
	return Decision{
		Identifier: identifier,
		Code:       CodeFrequencyExceeded,
		Reason:     fmt.Sprintf("%d calls in last 60s >= max %d", count, limit),
		Count:      count,
		Limit:      limit,
	}
}

func denyCooldown(identifier string, remaining int) Decision {
	return Decision{
		Identifier:        identifier,
		Code:              CodeCircuitOpen,
		Reason:            fmt.Sprintf("circuit open, %ds cooldown remaining", remaining),
		CooldownRemaining: remaining,
	}
}
