package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/alumlink/alumlink/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	// Scripts and handlers are stripped, formatting survives.
	got := htmlsanitize.Sanitize(`<p>Senior <b>Go</b> engineer</p><script>alert(1)</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("script survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<b>Go</b>") {
		t.Errorf("formatting was stripped: %q", got)
	}

	got = htmlsanitize.Sanitize(`<img src=x onerror="steal()">profile`)
	if strings.Contains(got, "onerror") {
		t.Errorf("event handler survived sanitization: %q", got)
	}

	if got := htmlsanitize.Sanitize("plain text bio"); got != "plain text bio" {
		t.Errorf("plain text was altered: %q", got)
	}
}
