// Package notify delivers transactional email. The only message today is
// the account verification link sent after registration.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

// Notifier sends a verification message. A returned error means the
// message was not accepted for delivery.
type Notifier interface {
	SendVerification(ctx context.Context, msg VerificationMessage) error
}

// VerificationMessage is the data needed to build a verification email.
type VerificationMessage struct {
	To       string
	UserName string
	Link     string
}

// VerificationLink builds <backendURL>/auth/verify?token=<token>.
func VerificationLink(backendURL, token string) string {
	return strings.TrimRight(backendURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
}

const verificationSubject = "Verify your Ducky account"

var htmlBody = htmltemplate.Must(htmltemplate.New("verify.html").Parse(
	`<p>Hi {{.UserName}},</p>
<p>Welcome to Ducky! Confirm your email address to finish signing up:</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>The link is valid for a limited time. If you did not sign up, ignore this message.</p>
`))

var textBody = texttemplate.Must(texttemplate.New("verify.txt").Parse(
	`Hi {{.UserName}},

Welcome to Ducky! Confirm your email address to finish signing up:

{{.Link}}

The link is valid for a limited time. If you did not sign up, ignore this message.
`))

// Rendered is a verification email ready to hand to a transport.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Render fills the verification templates for msg.
func Render(msg VerificationMessage) (Rendered, error) {
	var h, t bytes.Buffer
	if err := htmlBody.Execute(&h, msg); err != nil {
		return Rendered{}, fmt.Errorf("render html: %w", err)
	}
	if err := textBody.Execute(&t, msg); err != nil {
		return Rendered{}, fmt.Errorf("render text: %w", err)
	}
	return Rendered{Subject: verificationSubject, HTML: h.String(), Text: t.String()}, nil
}
