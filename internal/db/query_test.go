package db

import (
	"strings"
	"testing"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildList_PostgresPlaceholders(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	built := buildList(pgDialect, invite.Query{
		Search:     "ada",
		SortField:  invite.SortByEmail,
		Descending: true,
		Limit:      50,
		Offset:     100,
	}, now)

	assert.Contains(t, built.count, "expires_at <= $1")
	assert.Contains(t, built.count, "IN ($2)")
	assert.Contains(t, built.count, `LOWER(email) LIKE $3 ESCAPE '\'`)
	assert.Contains(t, built.count, `LOWER(role) LIKE $5`)
	require.Len(t, built.countArgs, 5)
	assert.Equal(t, now, built.countArgs[0])
	assert.Equal(t, "pending", built.countArgs[1])
	assert.Equal(t, "%ada%", built.countArgs[2])

	assert.Contains(t, built.page, "ORDER BY email DESC, id DESC LIMIT $6 OFFSET $7")
	assert.Equal(t, []any{50, 100}, built.pageArgs[5:])
}

func TestBuildList_SQLiteArgsFollowTextOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	built := buildList(liteDialect, invite.Query{
		SortField: invite.SortByStatus,
		Statuses:  []invite.Status{invite.StatusPending, invite.StatusExpired},
	}, now)

	assert.Equal(t, strings.Count(built.page, "?"), len(built.pageArgs))
	// where: now, pending, expired; order by: now; then limit, offset
	assert.Equal(t, []any{now.UnixMilli(), "pending", "expired", now.UnixMilli(), 25, 0}, built.pageArgs)
	assert.NotContains(t, built.count, "LIKE")
}

func TestBuildList_DefaultsAndWhitelist(t *testing.T) {
	built := buildList(pgDialect, invite.Query{SortField: "email; DROP TABLE x", Offset: -5}, time.Now())
	assert.Contains(t, built.page, "ORDER BY type ASC, id ASC")
	assert.NotContains(t, built.page, "DROP")
	assert.Equal(t, []any{25, 0}, built.pageArgs[len(built.pageArgs)-2:])
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestBuildFindByRef(t *testing.T) {
	sql, args := buildFindByRef(liteDialect, " 7abc12x ")
	assert.Contains(t, sql, "WHERE id = ? OR id LIKE ?")
	assert.Equal(t, []any{"7ABC12X", "%7ABC12X"}, args)
}

func TestNormalizeDriver(t *testing.T) {
	for in, want := range map[string]string{
		"":           DriverPostgres,
		"PostgreSQL": DriverPostgres,
		"pgx":        DriverPostgres,
		"sqlite3":    DriverSQLite,
	} {
		got, err := NormalizeDriver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeDriver("mysql")
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "postgres://ada:xxxxx@db:5432/app", RedactURL("postgres://ada:secret@db:5432/app"))
	assert.Equal(t, "postgres://db/app", RedactURL("postgres://db/app"))
}
