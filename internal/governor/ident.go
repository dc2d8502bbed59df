package governor

import "golang.org/x/text/unicode/norm"

// NormalizeIdentifier maps an identifier to Unicode NFC form.
//
// Identifiers are opaque keys, but they arrive from flags, config files,
// and logs written on different systems. NFC normalization at the API
// boundary guarantees that composed and decomposed spellings of the same
// name share one circuit and one call history.
func NormalizeIdentifier(identifier string) string {
	return norm.NFC.String(identifier)
}
