package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
)

// dialect captures the few places the two backends differ.
type dialect struct {
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// timeArg converts a time into the column's storage type.
	timeArg func(t time.Time) any
}

var pgDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	timeArg:     func(t time.Time) any { return t },
}

var liteDialect = dialect{
	placeholder: func(int) string { return "?" },
	timeArg:     func(t time.Time) any { return t.UnixMilli() },
}

// recordColumns is the column list every SELECT scans, in Record order.
const recordColumns = `id, type, email, role, invited_by, token_hash, status, resend_count, created_at, expires_at, updated_at`

// args accumulates bind parameters and hands out placeholders.
type args struct {
	d    dialect
	vals []any
}

func (a *args) add(v any) string {
	a.vals = append(a.vals, v)
	return a.d.placeholder(len(a.vals))
}

// statusExpr yields 'expired' for pending rows at or past their expiry, so
// filtering and sorting see the same status the user does.
func statusExpr(a *args, now time.Time) string {
	return fmt.Sprintf("(CASE WHEN status = 'pending' AND expires_at <= %s THEN 'expired' ELSE status END)",
		a.add(a.d.timeArg(now)))
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// listSQL is a built list query: shared WHERE plus ORDER BY and paging.
type listSQL struct {
	count     string
	countArgs []any
	page      string
	pageArgs  []any
}

// buildList renders the count and page statements for q.
// Sort columns come from a fixed whitelist, never from input.
func buildList(d dialect, q invite.Query, now time.Time) listSQL {
	where := func(a *args) string {
		var conds []string

		// Placeholders are added in text order; sqlite binds positionally.
		expr := statusExpr(a, now)
		statuses := q.StatusFilter()
		ph := make([]string, len(statuses))
		for i, s := range statuses {
			ph[i] = a.add(string(s))
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", expr, strings.Join(ph, ", ")))

		if term := strings.TrimSpace(q.Search); term != "" {
			pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
			var ors []string
			for _, col := range []string{"email", "invited_by", "role"} {
				ors = append(ors, fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col, a.add(pattern)))
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
		return strings.Join(conds, " AND ")
	}

	var out listSQL

	ca := &args{d: d}
	out.count = fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", Table, where(ca))
	out.countArgs = ca.vals

	pa := &args{d: d}
	w := where(pa)
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	var orderCol string
	switch q.SortField {
	case invite.SortByEmail:
		orderCol = "email"
	case invite.SortByDate:
		orderCol = "created_at"
	case invite.SortByStatus:
		orderCol = statusExpr(pa, now)
	default:
		orderCol = "type"
	}
	order := fmt.Sprintf("%s %s, id %s", orderCol, dir, dir)

	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	out.page = fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		recordColumns, Table, w, order, pa.add(limit), pa.add(offset))
	out.pageArgs = pa.vals
	return out
}

// buildFindByRef matches full IDs and the lowercase short tails.
func buildFindByRef(d dialect, ref string) (string, []any) {
	a := &args{d: d}
	ref = strings.ToUpper(strings.TrimSpace(ref))
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s OR id LIKE %s ESCAPE '\' ORDER BY id LIMIT 10`,
		recordColumns, Table, a.add(ref), a.add("%"+escapeLike(ref)))
	return sql, a.vals
}
