package coalesce

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer rewrites a candidate before it is looked up or stored. A
// candidate that normalizes to "" is treated as absent.
type Normalizer func(string) string

// Identity returns s unchanged. It is the default Normalizer.
func Identity(s string) string {
	return s
}

// NFC normalizes s to Unicode Normalization Form C, so that composed and
// decomposed spellings of the same name ("\u00e9" and "e\u0301") coalesce
// together.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// Fold applies NFC, trims surrounding whitespace and lowercases s. It suits
// identifiers such as email addresses where case carries no meaning.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(NFC(s)))
}

// Chain returns a Normalizer applying each of fns in order.
func Chain(fns ...Normalizer) Normalizer {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}
