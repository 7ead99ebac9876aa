package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/logutil"
	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// List runs the count and page queries concurrently on the pool.
func (s *PostgresStore) List(ctx context.Context, q invite.Query) (invite.Page, error) {
	ctx, span := tracer.Start(ctx, "db.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("invite.sort", string(q.SortField)),
		attribute.Bool("invite.desc", q.Descending),
		attribute.Int("invite.offset", q.Offset),
		attribute.Bool("invite.search", q.Search != ""),
	)

	built := buildList(pgDialect, q, time.Now())

	var (
		total   int
		records []invite.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.pool.QueryRow(gctx, built.count, built.countArgs...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, built.page, built.pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			r, err := scanPG(rows)
			if err != nil {
				return err
			}
			records = append(records, r)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return invite.Page{}, fmt.Errorf("list invites: %w", err)
	}

	logutil.L().Debug("listed invites",
		zap.String("driver", DriverPostgres),
		zap.Int("rows", len(records)),
		zap.Int("total", total))
	span.SetAttributes(attribute.Int("invite.total", total))
	return invite.Page{Records: records, Total: total}, nil
}

func scanPG(row pgx.Row) (invite.Record, error) {
	var (
		r           invite.Record
		typ, status string
	)
	err := row.Scan(&r.ID, &typ, &r.Email, &r.Role, &r.InvitedBy, &r.TokenHash,
		&status, &r.ResendCount, &r.CreatedAt, &r.ExpiresAt, &r.UpdatedAt)
	r.Type = invite.Type(typ)
	r.Status = invite.Status(status)
	return r, err
}

// Get retrieves an invite by its full ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*invite.Record, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", recordColumns, Table)
	r, err := scanPG(s.pool.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByRef returns invites whose ID equals or ends with ref.
func (s *PostgresStore) FindByRef(ctx context.Context, ref string) ([]invite.Record, error) {
	sql, args := buildFindByRef(pgDialect, ref)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invite.Record
	for rows.Next() {
		r, err := scanPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create inserts invites atomically.
func (s *PostgresStore) Create(ctx context.Context, recs ...*invite.Record) error {
	ctx, span := tracer.Start(ctx, "db.Create")
	defer span.End()
	span.SetAttributes(attribute.Int("invite.count", len(recs)))

	sql := fmt.Sprintf(`
	INSERT INTO %s (%s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, Table, recordColumns)

	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, r := range recs {
			if _, err := tx.Exec(ctx, sql, r.ID, string(r.Type), r.Email, r.Role, r.InvitedBy,
				r.TokenHash, string(r.Status), r.ResendCount, r.CreatedAt, r.ExpiresAt, r.UpdatedAt); err != nil {
				return fmt.Errorf("insert invite %s: %w", r.Email, err)
			}
		}
		return nil
	})
}

// Revoke marks a pending invite revoked.
func (s *PostgresStore) Revoke(ctx context.Context, id string, now time.Time) error {
	n, err := s.exec(ctx, fmt.Sprintf(`
	UPDATE %s SET status = 'revoked', updated_at = $2
	WHERE id = $1 AND status = 'pending'`, Table), id, now)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.explainMiss(ctx, id, now)
	}
	return nil
}

// MarkResent stores a new token digest and expiry and bumps resend_count.
func (s *PostgresStore) MarkResent(ctx context.Context, id, tokenHash string, expiresAt, now time.Time) error {
	n, err := s.exec(ctx, fmt.Sprintf(`
	UPDATE %s SET token_hash = $2, expires_at = $3, status = 'pending',
	       resend_count = resend_count + 1, updated_at = $4
	WHERE id = $1 AND status IN ('pending', 'expired')`, Table), id, tokenHash, expiresAt, now)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.explainMiss(ctx, id, now)
	}
	return nil
}

func (s *PostgresStore) explainMiss(ctx context.Context, id string, now time.Time) error {
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
func (s *PostgresStore) CountPending(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE status = 'pending' AND expires_at > $1", Table), now).Scan(&n)
	return n, err
}
