package mailer_test

import (
	"strings"
	"testing"

	"github.com/alumlink/alumlink/internal/app/system/mailer"
	"go.uber.org/zap"
)

func TestBuildJobApplicationEmail(t *testing.T) {
	email := mailer.BuildJobApplicationEmail(mailer.JobApplicationData{
		JobTitle:       "Engineer",
		Company:        "Acme",
		ApplicantName:  "Sam Student",
		ApplicantEmail: "sam@example.com",
		Note:           "Available from June",
	})

	if email.Subject != "Application for Engineer at Acme" {
		t.Errorf("unexpected subject: %q", email.Subject)
	}
	for _, want := range []string{"Sam Student", "sam@example.com", "Available from June"} {
		if !strings.Contains(email.TextBody, want) {
			t.Errorf("text body missing %q", want)
		}
		if !strings.Contains(email.HTMLBody, want) {
			t.Errorf("HTML body missing %q", want)
		}
	}

	// The note block is optional.
	noNote := mailer.BuildJobApplicationEmail(mailer.JobApplicationData{
		JobTitle:       "Engineer",
		Company:        "Acme",
		ApplicantName:  "Sam Student",
		ApplicantEmail: "sam@example.com",
	})
	if strings.Contains(noNote.TextBody, "Available") {
		t.Error("expected no note in the text body")
	}
}

func TestSend_NotConfigured(t *testing.T) {
	m := mailer.New(mailer.Config{}, zap.NewNop())
	if m.Enabled() {
		t.Error("expected an unconfigured mailer to be disabled")
	}
	if err := m.Send(mailer.Email{To: "x@example.com"}); err != mailer.ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
