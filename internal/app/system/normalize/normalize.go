// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for case-insensitive lookup
// and storage.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
