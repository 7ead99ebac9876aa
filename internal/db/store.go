// Package db persists invites in PostgreSQL (pgx) or a local SQLite file
// (modernc.org/sqlite). Both stores share one SQL builder so that search,
// ordering and paging behave identically.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/util"
	"go.opentelemetry.io/otel"
)

// Table is the invites table name in both backends.
const Table = "pinvite_invites"

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var tracer = otel.Tracer("github.com/imgajeed76/pinvite/internal/db")

// Store is everything pinvite needs from a backend.
type Store interface {
	// List returns one page of invites matching q and the total match count.
	List(ctx context.Context, q invite.Query) (invite.Page, error)
	// Get returns util.ErrInviteNotFound when id does not exist.
	Get(ctx context.Context, id string) (*invite.Record, error)
	// FindByRef matches a full ID or the short tail printed by util.ShortID.
	FindByRef(ctx context.Context, ref string) ([]invite.Record, error)
	// Create inserts all records in one transaction.
	Create(ctx context.Context, recs ...*invite.Record) error
	Revoke(ctx context.Context, id string, now time.Time) error
	// MarkResent renews a pending or expired invite with a new token.
	MarkResent(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error
	CountPending(ctx context.Context, now time.Time) (int, error)

	InitSchema(ctx context.Context) error
	SchemaReady(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Driver() string
	Target() string
	Close() error
}

// Options selects and locates a backend.
type Options struct {
	Driver string
	URL    string // postgres
	Path   string // sqlite
}

// NormalizeDriver maps common spellings onto DriverPostgres or DriverSQLite.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3", "lite":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("%w: %s", util.ErrUnsupportedDriver, name)
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	driver, err := NormalizeDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, util.ErrNoDatabase
		}
		return OpenLite(ctx, opts.Path)
	default:
		if opts.URL == "" {
			return nil, util.ErrNoDatabase
		}
		return Connect(ctx, opts.URL)
	}
}

// classify explains why a mutation matched no pending row.
func classify(rec *invite.Record, now time.Time) error {
	switch rec.EffectiveStatus(now) {
	case invite.StatusAccepted:
		return util.ErrAlreadyAccepted
	case invite.StatusPending:
		return nil
	}
	return fmt.Errorf("%w (%s)", util.ErrNotPending, rec.EffectiveStatus(now))
}
