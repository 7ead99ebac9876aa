// Package table renders invite listings for non-interactive output. It
// supports an aligned plain text table, JSON, and raw tab-separated output
// for piping. The interactive browser lives in internal/ui/browser and
// shares the cell formatting defined here.
package table

import (
	"io"
	"time"

	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/util"
)

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// JSON outputs results as a JSON array of objects.
	JSON bool
	// Raw outputs results as tab-separated values (for piping).
	Raw bool
	// Wide shows full invite IDs and absolute timestamps.
	Wide bool
	// Now is the reference time for relative dates and expiry. Zero means
	// time.Now().
	Now time.Time
}

func (o DisplayOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Columns returns the column headers in display order.
func Columns(tr i18n.Translator) []string {
	return []string{
		"ID",
		tr.T("Invite_type"),
		tr.T("Email"),
		tr.T("Role"),
		tr.T("Invited_by"),
		tr.T("Invite_status"),
		tr.T("Date"),
		tr.T("Expires"),
	}
}

// Row formats one record as cells matching Columns.
func Row(r invite.Record, tr i18n.Translator, now time.Time, wide bool) []string {
	id := util.ShortID(r.ID)
	created := util.RelativeTimeShort(r.CreatedAt, now)
	expires := util.ExpiresIn(r.ExpiresAt, now)
	if wide {
		id = r.ID
		created = r.CreatedAt.Format(time.RFC3339)
		expires = r.ExpiresAt.Format(time.RFC3339)
	}
	return []string{
		id,
		TypeLabel(tr, r.Type),
		r.Email,
		r.Role,
		r.InvitedBy,
		StatusLabel(tr, r.EffectiveStatus(now)),
		created,
		expires,
	}
}

// TypeLabel translates an invite type.
func TypeLabel(tr i18n.Translator, t invite.Type) string {
	return tr.T("Type_" + string(t))
}

// StatusLabel translates an invite status.
func StatusLabel(tr i18n.Translator, s invite.Status) string {
	return tr.T("Status_" + string(s))
}

// DisplayResults writes page to w in the format opts selects.
func DisplayResults(w io.Writer, page invite.Page, tr i18n.Translator, opts DisplayOptions) error {
	now := opts.now()

	if opts.JSON {
		return PrintJSONResults(w, page, now)
	}

	rows := make([][]string, len(page.Records))
	for i, r := range page.Records {
		rows[i] = Row(r, tr, now, opts.Wide || opts.Raw)
	}

	if opts.Raw {
		return PrintRaw(w, rows)
	}

	return PrintPlainTable(w, Columns(tr), rows, tr.T("Pending_count", page.Total))
}
