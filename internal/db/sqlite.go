package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/imgajeed76/pinvite/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// LiteStore keeps invites in a local SQLite file.
type LiteStore struct {
	db   *sql.DB
	path string
}

// OpenLite opens (creating if needed) the sqlite file at path.
func OpenLite(ctx context.Context, path string) (*LiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; readers queue behind it.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &LiteStore{db: sqlDB, path: cleanPath}, nil
}

// Close releases the SQLite connection.
func (s *LiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver reports DriverSQLite.
func (s *LiteStore) Driver() string { return DriverSQLite }

// Target returns the database file path.
func (s *LiteStore) Target() string { return s.path }

// Ping checks the file is still usable.
func (s *LiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLite(row rowScanner) (invite.Record, error) {
	var (
		r                         invite.Record
		typ, status               string
		created, expires, updated int64
	)
	err := row.Scan(&r.ID, &typ, &r.Email, &r.Role, &r.InvitedBy, &r.TokenHash,
		&status, &r.ResendCount, &created, &expires, &updated)
	r.Type = invite.Type(typ)
	r.Status = invite.Status(status)
	r.CreatedAt = time.UnixMilli(created).UTC()
	r.ExpiresAt = time.UnixMilli(expires).UTC()
	r.UpdatedAt = time.UnixMilli(updated).UTC()
	return r, err
}

// List runs the count and page queries. The single sqlite connection
// serializes them, so they run one after the other.
func (s *LiteStore) List(ctx context.Context, q invite.Query) (invite.Page, error) {
	ctx, span := tracer.Start(ctx, "db.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("invite.sort", string(q.SortField)),
		attribute.Bool("invite.desc", q.Descending),
		attribute.Int("invite.offset", q.Offset),
	)

	page, err := s.list(ctx, q, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return invite.Page{}, fmt.Errorf("list invites: %w", err)
	}
	logutil.L().Debug("listed invites",
		zap.String("driver", DriverSQLite),
		zap.Int("rows", len(page.Records)),
		zap.Int("total", page.Total))
	return page, nil
}

func (s *LiteStore) list(ctx context.Context, q invite.Query, now time.Time) (invite.Page, error) {
	built := buildList(liteDialect, q, now)

	var page invite.Page
	if err := s.db.QueryRowContext(ctx, built.count, built.countArgs...).Scan(&page.Total); err != nil {
		return invite.Page{}, err
	}

	rows, err := s.db.QueryContext(ctx, built.page, built.pageArgs...)
	if err != nil {
		return invite.Page{}, err
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanLite(rows)
		if err != nil {
			return invite.Page{}, err
		}
		page.Records = append(page.Records, r)
	}
	return page, rows.Err()
}

// Get retrieves an invite by its full ID.
func (s *LiteStore) Get(ctx context.Context, id string) (*invite.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", recordColumns, Table)
	r, err := scanLite(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, util.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByRef returns invites whose ID equals or ends with ref.
func (s *LiteStore) FindByRef(ctx context.Context, ref string) ([]invite.Record, error) {
	q, args := buildFindByRef(liteDialect, ref)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invite.Record
	for rows.Next() {
		r, err := scanLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create inserts invites atomically.
func (s *LiteStore) Create(ctx context.Context, recs ...*invite.Record) error {
	ctx, span := tracer.Start(ctx, "db.Create")
	defer span.End()
	span.SetAttributes(attribute.Int("invite.count", len(recs)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", Table, recordColumns)
	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, q, r.ID, string(r.Type), r.Email, r.Role, r.InvitedBy,
			r.TokenHash, string(r.Status), r.ResendCount,
			r.CreatedAt.UnixMilli(), r.ExpiresAt.UnixMilli(), r.UpdatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("insert invite %s: %w", r.Email, err)
		}
	}
	return tx.Commit()
}

// Revoke marks a pending invite revoked.
func (s *LiteStore) Revoke(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET status = 'revoked', updated_at = ? WHERE id = ? AND status = 'pending'", Table),
		now.UnixMilli(), id)
	if err != nil {
		return err
	}
	return s.checkHit(ctx, res, id, now)
}

// MarkResent stores a new token digest and expiry and bumps resend_count.
func (s *LiteStore) MarkResent(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
	UPDATE %s SET token_hash = ?, expires_at = ?, status = 'pending',
	       resend_count = resend_count + 1, updated_at = ?
	WHERE id = ? AND status IN ('pending', 'expired')`, Table),
		tokenHash, expiresAt.UnixMilli(), now.UnixMilli(), id)
	if err != nil {
		return err
	}
	return s.checkHit(ctx, res, id, now)
}

func (s *LiteStore) checkHit(ctx context.Context, res sql.Result, id string, now time.Time) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := classify(rec, now); err != nil {
		return err
	}
	return fmt.Errorf("invite %s changed concurrently", id)
}

// CountPending counts invites that are pending and not yet expired.
func (s *LiteStore) CountPending(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE status = 'pending' AND expires_at > ?", Table), now.UnixMilli()).Scan(&n)
	return n, err
}
