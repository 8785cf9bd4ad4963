package relay

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes free text for comparison: Unicode NFKC folds
// width and compatibility variants, then trim and lowercase. Pure and
// total; empty input yields the empty string.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
