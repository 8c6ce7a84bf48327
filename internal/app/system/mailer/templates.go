package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// CredentialEmailData holds data for the credential delivery email sent
// when a head account is approved or its credential is reset.
type CredentialEmailData struct {
	SiteName    string
	FullName    string
	CollegeName string
	Email       string
	Password    string
	LoginURL    string
}

// BuildCredentialEmail creates the credential delivery email with both
// HTML and text bodies.
func BuildCredentialEmail(data CredentialEmailData) Email {
	return Email{
		To:       data.Email,
		Subject:  fmt.Sprintf("Your %s account for %s", data.SiteName, data.CollegeName),
		TextBody: buildCredentialText(data),
		HTMLBody: buildCredentialHTML(data),
	}
}

func buildCredentialText(data CredentialEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hello %s,\n\n", data.FullName)
	fmt.Fprintf(&buf, "Your %s account for %s has been approved.\n\n", data.SiteName, data.CollegeName)
	fmt.Fprintf(&buf, "Login: %s\nPassword: %s\n\n", data.Email, data.Password)
	fmt.Fprintf(&buf, "Sign in at %s and change your password after first login.\n", data.LoginURL)
	return buf.String()
}

func buildCredentialHTML(data CredentialEmailData) string {
	tmpl := template.Must(template.New("credential").Parse(credentialHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// StatusEmailData holds data for the tenant status change notice sent
// to a college head when their college is activated or deactivated.
type StatusEmailData struct {
	SiteName    string
	FullName    string
	CollegeName string
	Active      bool
}

// BuildTenantStatusEmail creates the status change notice.
func BuildTenantStatusEmail(to string, data StatusEmailData) Email {
	verb := "deactivated"
	if data.Active {
		verb = "reactivated"
	}
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("%s has been %s on %s", data.CollegeName, verb, data.SiteName),
		TextBody: buildStatusText(data, verb),
		HTMLBody: buildStatusHTML(data),
	}
}

func buildStatusText(data StatusEmailData, verb string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hello %s,\n\n", data.FullName)
	fmt.Fprintf(&buf, "%s has been %s on %s.\n\n", data.CollegeName, verb, data.SiteName)
	if data.Active {
		buf.WriteString("All member accounts have been unblocked and can sign in again.\n")
	} else {
		buf.WriteString("All member accounts are blocked until the college is reactivated.\n")
	}
	return buf.String()
}

func buildStatusHTML(data StatusEmailData) string {
	tmpl := template.Must(template.New("status").Parse(statusHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const credentialHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Account Approved</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hello {{.FullName}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">
                Your account for <strong>{{.CollegeName}}</strong> has been approved.
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 20px; margin-bottom: 24px;">
                <p style="margin: 0 0 8px; font-size: 14px; color: #1f2937;">Login: <strong>{{.Email}}</strong></p>
                <p style="margin: 0; font-size: 14px; color: #1f2937;">Password: <strong style="font-family: 'Courier New', monospace;">{{.Password}}</strong></p>
              </div>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.LoginURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; border-radius: 6px;">Sign In</a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                Change your password after your first login.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const statusHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>College Status Changed</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hello {{.FullName}},</p>
              {{if .Active}}
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                <strong>{{.CollegeName}}</strong> has been reactivated. All member accounts have been unblocked.
              </p>
              {{else}}
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                <strong>{{.CollegeName}}</strong> has been deactivated. All member accounts are blocked until the college is reactivated.
              </p>
              {{end}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
