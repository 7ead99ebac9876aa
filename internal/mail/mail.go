// Package mail delivers invitation emails.
//
// Sender hides the provider; commands depend on the interface and New picks
// the implementation from configuration. Deliver fans a batch out over a
// bounded worker pool.
package mail

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/resend/resend-go/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Providers accepted by New.
const (
	ProviderNone   = "none"
	ProviderResend = "resend"
)

var tracer = otel.Tracer("github.com/imgajeed76/pinvite/internal/mail")

// Message is one invitation to deliver.
type Message struct {
	InviteID  string
	To        string
	Role      string
	InvitedBy string
	Token     string // plaintext; only its digest is stored
	ExpiresAt time.Time
	Resend    bool
}

// Sender delivers invitation emails.
type Sender interface {
	SendInvite(ctx context.Context, msg Message) error
}

// Options configures New.
type Options struct {
	Provider string
	APIKey   string
	From     string
	AppURL   string
}

// New returns the sender for opts.Provider.
func New(opts Options) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderNone:
		return NopSender{}, nil
	case ProviderResend:
		if opts.APIKey == "" || opts.From == "" {
			return nil, util.ErrMailNotConfigured
		}
		return NewResendSender(opts.APIKey, opts.From, opts.AppURL), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q (want none or resend)", opts.Provider)
}

// InviteLink builds the acceptance URL for a token.
func InviteLink(appURL, token string) string {
	return fmt.Sprintf("%s/invite/accept?token=%s", strings.TrimRight(appURL, "/"), url.QueryEscape(token))
}

// NopSender records nothing and sends nothing. It backs provider "none",
// where link invites are shared by hand.
type NopSender struct{}

// SendInvite logs the skipped delivery.
func (NopSender) SendInvite(_ context.Context, msg Message) error {
	logutil.L().Debug("mail provider is none, skipping delivery",
		zap.String("invite", msg.InviteID))
	return nil
}

// resendSender delivers through the Resend API.
type resendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
}

// NewResendSender creates a Sender backed by Resend.
func NewResendSender(apiKey, fromEmail, appURL string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *resendSender) SendInvite(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "mail.SendInvite")
	defer span.End()
	span.SetAttributes(
		attribute.String("invite.id", msg.InviteID),
		attribute.Bool("invite.resend", msg.Resend),
	)

	subject, body := Render(msg, InviteLink(s.appURL, msg.Token))
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("pinvite <%s>", s.fromEmail),
		To:      []string{msg.To},
		Subject: subject,
		Html:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to send invite to %s: %w", msg.To, err)
	}
	return nil
}

// Render returns the subject and HTML body of an invitation.
func Render(msg Message, link string) (string, string) {
	subject := "You have been invited"
	if msg.Resend {
		subject = "Reminder: you have been invited"
	}

	inviter := "Someone"
	if msg.InvitedBy != "" {
		inviter = html.EscapeString(msg.InvitedBy)
	}
	role := ""
	if msg.Role != "" {
		role = fmt.Sprintf(" as <strong>%s</strong>", html.EscapeString(msg.Role))
	}
	expiry := ""
	if !msg.ExpiresAt.IsZero() {
		expiry = fmt.Sprintf("<p>This invitation expires on %s.</p>", msg.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST"))
	}
	link = html.EscapeString(link)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;">
  <p>%s invited you to join%s.</p>
  <p><a href="%s">Accept invitation</a></p>
  %s
  <p style="color:#64748b;font-size:13px;">If the link does not work, paste this into your browser:<br>%s</p>
</body>
</html>`, inviter, role, link, expiry, link)

	return subject, body
}
