package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and applies Unicode NFC so the
// same visible name is always stored with the same bytes.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
