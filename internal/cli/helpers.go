package cli

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/config"
	"github.com/imgajeed76/pinvite/internal/db"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/mail"
	"github.com/imgajeed76/pinvite/internal/util"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// connectTimeout bounds how long commands wait for the database.
const connectTimeout = 10 * time.Second

func storeOptions(cfg *config.Config) db.Options {
	return db.Options{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
		Path:   cfg.SQLitePath(),
	}
}

// openStore connects to the configured store and, when requireSchema is
// set, checks that `pinvite init` has been run. Caller must Close it.
func openStore(ctx context.Context, a *app, requireSchema bool) (db.Store, error) {
	opts := storeOptions(a.cfg)
	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	store, err := db.Open(dialCtx, opts)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoDatabase):
			return nil, util.NoDatabaseError()
		case errors.Is(err, util.ErrUnsupportedDriver):
			return nil, util.NewError("Unsupported database driver").
				WithContext(opts.Driver).
				WithSuggestion("pinvite config set database.driver sqlite").
				Wrap(err)
		}
		target := opts.Path
		if d, _ := db.NormalizeDriver(opts.Driver); d == db.DriverPostgres {
			target = db.RedactURL(opts.URL)
		}
		return nil, util.DatabaseConnectionError(target, err)
	}
	a.log.Debug("store opened", zap.String("driver", store.Driver()), zap.String("target", store.Target()))

	if requireSchema {
		ready, err := store.SchemaReady(dialCtx)
		if err != nil {
			store.Close()
			return nil, util.DatabaseConnectionError(store.Target(), err)
		}
		if !ready {
			store.Close()
			return nil, util.SchemaMissingError()
		}
	}
	return store, nil
}

// resolveRef finds the invite a full or short ID refers to.
func resolveRef(ctx context.Context, store db.Store, ref string) (*invite.Record, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, util.MissingArgumentError("id", "pinvite list --plain")
	}
	matches, err := store.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, util.InviteNotFoundError(ref)
	case 1:
		return &matches[0], nil
	}
	return nil, util.AmbiguousIDError(ref, len(matches))
}

func newSender(cfg *config.Config) (mail.Sender, error) {
	s, err := mail.New(mail.Options{
		Provider: cfg.Mail.Provider,
		APIKey:   cfg.Mail.APIKey,
		From:     cfg.Mail.From,
		AppURL:   cfg.Mail.AppURL,
	})
	if errors.Is(err, util.ErrMailNotConfigured) {
		return nil, util.MailNotConfiguredError()
	}
	return s, err
}

// senderOrNop returns the configured sender, or one that delivers nothing
// while mail is off.
func senderOrNop(cfg *config.Config) (mail.Sender, error) {
	if !mailEnabled(cfg) {
		return mail.NopSender{}, nil
	}
	return newSender(cfg)
}

// mailEnabled reports whether invites are delivered by mail.
func mailEnabled(cfg *config.Config) bool {
	p := strings.ToLower(strings.TrimSpace(cfg.Mail.Provider))
	return p != "" && p != mail.ProviderNone
}

// isInteractive reports whether stdout is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}
