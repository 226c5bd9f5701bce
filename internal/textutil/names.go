package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the NFC normal form of a display name with
// surrounding whitespace removed.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// EqualNames reports whether two display names are equal after NFC
// normalization.
func EqualNames(a, b string) bool {
	if a == b {
		return true
	}
	return NormalizeName(a) == NormalizeName(b)
}
