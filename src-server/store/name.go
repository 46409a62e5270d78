package store

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// strips surrounding spaces, composes unicode so visually equal names compare equal
func CleanupName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
