// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// JobApplicationData holds data for the job-application email sent to the
// posting contact.
type JobApplicationData struct {
	JobTitle       string
	Company        string
	ApplicantName  string
	ApplicantEmail string
	Note           string
}

// BuildJobApplicationEmail creates the job-application email with both HTML
// and text bodies. The caller sets To.
func BuildJobApplicationEmail(data JobApplicationData) Email {
	return Email{
		Subject:  fmt.Sprintf("Application for %s at %s", data.JobTitle, data.Company),
		TextBody: buildJobApplicationText(data),
		HTMLBody: buildJobApplicationHTML(data),
	}
}

func buildJobApplicationText(data JobApplicationData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s has applied for %s at %s.\n\n", data.ApplicantName, data.JobTitle, data.Company)
	fmt.Fprintf(&buf, "Reply to: %s\n\n", data.ApplicantEmail)
	if data.Note != "" {
		buf.WriteString(data.Note + "\n")
	}
	return buf.String()
}

func buildJobApplicationHTML(data JobApplicationData) string {
	tmpl := template.Must(template.New("job_application").Parse(jobApplicationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const jobApplicationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>New Application</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 20px; color: #1f2937;">New application for {{.JobTitle}}</h2>
              <p style="margin: 0 0 12px; font-size: 15px; color: #374151;">
                <strong>{{.ApplicantName}}</strong> has applied for the {{.JobTitle}} position at {{.Company}}.
              </p>
              <p style="margin: 0 0 12px; font-size: 15px; color: #374151;">
                Reply to: <a href="mailto:{{.ApplicantEmail}}">{{.ApplicantEmail}}</a>
              </p>
              {{if .Note}}
              <p style="margin: 16px 0 0; padding: 16px; background-color: #f9fafb; border-radius: 6px; font-size: 14px; color: #4b5563;">{{.Note}}</p>
              {{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
