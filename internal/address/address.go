// Package address canonicalizes account addresses so that every equality
// check in the checker goes through one place.
package address

import "strings"

// Canonical returns the normalized form of an address: surrounding space
// removed and hex digits lowercased. An empty input stays empty.
func Canonical(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Equal reports whether two addresses refer to the same account, ignoring
// checksum casing. An empty address never equals anything, including
// another empty address.
func Equal(a, b string) bool {
	ca, cb := Canonical(a), Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	return ca == cb
}
