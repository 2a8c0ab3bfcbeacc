// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe HTML from user-provided rich text
// (job descriptions, event descriptions, bios) before storage.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows common formatting tags but no scripts, styles, or event
// handlers. UGC covers the markup our editors emit.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}
