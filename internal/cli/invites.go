package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/db"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/mail"
	"github.com/imgajeed76/pinvite/internal/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultTTL is how long a new or renewed invite stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// invites runs the mutating workflows shared by the commands and the
// browser: create, revoke, resend.
type invites struct {
	store   db.Store
	sender  mail.Sender
	appURL  string
	workers int
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func newInvites(store db.Store, sender mail.Sender, cfg *config.Config, log *zap.Logger) *invites {
	return &invites{
		store:   store,
		sender:  sender,
		appURL:  cfg.Mail.AppURL,
		workers: cfg.Mail.Workers,
		ttl:     DefaultTTL,
		now:     time.Now,
		log:     log,
	}
}

type sendRequest struct {
	Emails    []string
	Type      invite.Type
	Role      string
	InvitedBy string
	TTL       time.Duration
}

// issued is an invite together with its plaintext token, which exists only
// until the command exits.
type issued struct {
	Record invite.Record
	Token  string
	Link   string
}

// Send creates one invite per address and mails the email-type ones. The
// records are stored even if delivery fails; the returned error then lists
// the failed deliveries.
func (s *invites) Send(ctx context.Context, req sendRequest, onDone func(mail.Result)) ([]issued, error) {
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}

	seen := make(map[string]bool, len(req.Emails))
	var emails []string
	for _, raw := range req.Emails {
		email, err := util.NormalizeEmail(util.ToValidUTF8(raw))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", raw, err)
		}
		if !seen[email] {
			seen[email] = true
			emails = append(emails, email)
		}
	}

	now := s.now()
	out := make([]issued, len(emails))
	recs := make([]*invite.Record, len(emails))
	for i, email := range emails {
		token := invite.NewToken()
		out[i] = issued{
			Record: invite.Record{
				ID:        util.NewULIDWithTime(now),
				Type:      req.Type,
				Email:     email,
				Role:      req.Role,
				InvitedBy: req.InvitedBy,
				TokenHash: invite.HashToken(token),
				Status:    invite.StatusPending,
				CreatedAt: now,
				ExpiresAt: now.Add(ttl),
				UpdatedAt: now,
			},
			Token: token,
			Link:  mail.InviteLink(s.appURL, token),
		}
		recs[i] = &out[i].Record
	}

	if err := s.store.Create(ctx, recs...); err != nil {
		return nil, fmt.Errorf("failed to store invites: %w", err)
	}
	s.log.Info("invites created", zap.Int("count", len(out)), zap.String("type", string(req.Type)))

	return out, mail.Deliver(ctx, s.sender, messages(out, false), s.workers, onDone)
}

// Revoke withdraws a pending invite.
func (s *invites) Revoke(ctx context.Context, rec invite.Record) error {
	if err := s.store.Revoke(ctx, rec.ID, s.now()); err != nil {
		return err
	}
	s.log.Info("invite revoked", zap.String("invite", rec.ID))
	return nil
}

// Resend renews one invite and mails it again.
func (s *invites) Resend(ctx context.Context, rec invite.Record) error {
	_, err := s.ResendAll(ctx, []invite.Record{rec}, nil)
	return err
}

// ResendAll gives every record a fresh token and expiry, then mails the
// email-type ones through the worker pool. Records that cannot be renewed
// are reported through onDone and the returned error.
func (s *invites) ResendAll(ctx context.Context, recs []invite.Record, onDone func(mail.Result)) ([]issued, error) {
	now := s.now()
	var (
		errs    error
		renewed []issued
	)
	for _, r := range recs {
		token := invite.NewToken()
		expires := now.Add(s.ttl)
		if err := s.store.MarkResent(ctx, r.ID, invite.HashToken(token), expires, now); err != nil {
			err = fmt.Errorf("%s: %w", util.ShortID(r.ID), err)
			errs = multierr.Append(errs, err)
			if onDone != nil {
				onDone(mail.Result{Message: mail.Message{InviteID: r.ID, To: r.Email}, Err: err})
			}
			continue
		}
		r.TokenHash = invite.HashToken(token)
		r.Status = invite.StatusPending
		r.ResendCount++
		r.ExpiresAt = expires
		r.UpdatedAt = now
		renewed = append(renewed, issued{Record: r, Token: token, Link: mail.InviteLink(s.appURL, token)})
	}

	// link invites have nothing to mail; count them as done
	if onDone != nil {
		for _, iv := range renewed {
			if iv.Record.Type != invite.TypeEmail {
				onDone(mail.Result{Message: mail.Message{InviteID: iv.Record.ID, To: iv.Record.Email}})
			}
		}
	}

	err := mail.Deliver(ctx, s.sender, messages(renewed, true), s.workers, onDone)
	return renewed, multierr.Append(errs, err)
}

// messages builds mail for the email-type invites in list.
func messages(list []issued, resend bool) []mail.Message {
	var msgs []mail.Message
	for _, iv := range list {
		if iv.Record.Type != invite.TypeEmail {
			continue
		}
		msgs = append(msgs, mail.Message{
			InviteID:  iv.Record.ID,
			To:        iv.Record.Email,
			Role:      iv.Record.Role,
			InvitedBy: iv.Record.InvitedBy,
			Token:     iv.Token,
			ExpiresAt: iv.Record.ExpiresAt,
			Resend:    resend,
		})
	}
	return msgs
}
