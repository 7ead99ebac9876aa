package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/imgajeed76/pinvite/internal/listing"
	"github.com/imgajeed76/pinvite/internal/ui/styles"
	"github.com/imgajeed76/pinvite/internal/ui/table"
	"github.com/imgajeed76/pinvite/internal/util"
)

// Screen rows: title, search bar, column header, separator, then records.
const (
	headerLine   = 2
	firstRowLine = 4
	footerLines  = 3
)

// narrowWidth is the terminal width below which the date and status columns
// are hidden.
const narrowWidth = 100

type column struct {
	key   string           // catalog key of the header
	field invite.SortField // empty when the column is not sortable
	width int              // 0 takes the remaining space
	wide  bool             // hidden on narrow terminals
	cell  func(r invite.Record, tr i18n.Translator, now time.Time) string
	style func(r invite.Record, now time.Time, text string) string
}

var allColumns = []column{
	{key: "ID", width: 7,
		cell:  func(r invite.Record, _ i18n.Translator, _ time.Time) string { return util.ShortID(r.ID) },
		style: func(_ invite.Record, _ time.Time, s string) string { return styles.Render(styles.IDStyle, s) }},
	{key: "Invite_type", field: invite.SortByType, width: 14,
		cell: func(r invite.Record, tr i18n.Translator, _ time.Time) string { return table.TypeLabel(tr, r.Type) },
		style: func(r invite.Record, _ time.Time, s string) string {
			if r.Type == invite.TypeLink {
				return styles.Render(styles.LinkStyle, s)
			}
			return s
		}},
	{key: "Email", field: invite.SortByEmail,
		cell: func(r invite.Record, _ i18n.Translator, _ time.Time) string { return r.Email }},
	{key: "Role", width: 12,
		cell: func(r invite.Record, _ i18n.Translator, _ time.Time) string { return r.Role }},
	{key: "Invite_status", field: invite.SortByStatus, width: 10, wide: true,
		cell: func(r invite.Record, tr i18n.Translator, now time.Time) string {
			return table.StatusLabel(tr, r.EffectiveStatus(now))
		},
		style: func(r invite.Record, now time.Time, s string) string {
			return styles.Status(string(r.EffectiveStatus(now)), s)
		}},
	{key: "Date", field: invite.SortByDate, width: 10, wide: true,
		cell:  func(r invite.Record, _ i18n.Translator, now time.Time) string { return util.RelativeTimeShort(r.CreatedAt, now) },
		style: func(_ invite.Record, _ time.Time, s string) string { return styles.Date(s) }},
	{key: "Expires", width: 12,
		cell: func(r invite.Record, _ i18n.Translator, now time.Time) string { return util.ExpiresIn(r.ExpiresAt, now) }},
}

// columns returns the columns that fit the terminal, with the flexible
// column sized to the remaining width.
func (m model) columns() []column {
	var cols []column
	fixed := 0
	for _, c := range allColumns {
		if c.wide && m.width < narrowWidth {
			continue
		}
		cols = append(cols, c)
		fixed += c.width + 2
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = max(m.width-fixed-2, 10)
		}
	}
	return cols
}

// columnAt returns the column under screen column x.
func (m model) columnAt(x int) (column, bool) {
	pos := 0
	for _, c := range m.columns() {
		if x >= pos && x < pos+c.width {
			return c, true
		}
		pos += c.width + 2
	}
	return column{}, false
}

func (m model) visibleRowCount() int {
	count := m.height - firstRowLine - footerLines
	if count < 1 {
		count = 1
	}
	return count
}

func (m *model) ensureRowVisible() {
	visibleRows := m.visibleRowCount()
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	} else if m.cursor >= m.scrollY+visibleRows {
		m.scrollY = m.cursor - visibleRows + 1
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m model) View() string {
	if !m.ready {
		return m.tr.T("Loading")
	}

	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")
	sb.WriteString(m.renderSearch())
	sb.WriteString("\n")

	if m.mode == modeInfo && m.info != nil {
		sb.WriteString(m.renderInfo())
	} else {
		sb.WriteString(m.renderBody())
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m model) renderTitle() string {
	title := styles.Render(styles.ActiveHeaderStyle, "pinvite")
	if m.pending >= 0 {
		title += "  " + styles.Render(styles.Pending, m.tr.T("Pending_count", m.pending))
	}
	if m.snap.State.IsLoading() || m.snap.State.IsIdle() {
		title += "  " + m.spin.View()
	}
	return title
}

func (m model) renderSearch() string {
	switch {
	case m.mode == modeSearch:
		return "/" + m.search.View()
	case m.snap.RawSearch != "":
		return styles.MutedMsg(fmt.Sprintf("%s: %s", m.tr.T("Search_Users"), m.snap.RawSearch))
	default:
		return styles.MutedMsg("/ " + m.tr.T("Search_Users"))
	}
}

// renderBody draws the table, or the loading, error or empty state.
func (m model) renderBody() string {
	st := m.snap.State
	switch {
	case st.IsError():
		return "\n" + styles.ErrorMsg(m.tr.T("Something_went_wrong")) + "\n" +
			styles.HelpLine("R", m.tr.T("Reload_page")) + "\n"
	case st.IsEmpty():
		return "\n" + styles.SectionHeader(m.tr.T("No_invite_records")) + "\n" +
			styles.MutedMsg(m.tr.T("Add_people_by_sending_invites")) + "\n"
	case len(m.records) == 0 && !st.IsSuccess():
		return "\n" + m.spin.View() + " " + m.tr.T("Loading") + "\n"
	}
	return m.renderTable()
}

func (m model) renderTable() string {
	cols := m.columns()
	now := m.now()
	var sb strings.Builder

	headers := make([]string, len(cols))
	seps := make([]string, len(cols))
	for i, c := range cols {
		title := m.tr.T(c.key)
		if c.field != "" && m.snap.Sort.Active(c.field) {
			title += " " + styles.SortIndicator(m.snap.Sort.Direction == listing.Descending)
			headers[i] = styles.Render(styles.ActiveHeaderStyle, table.PadOrTruncate(title, c.width))
		} else {
			headers[i] = styles.Render(styles.HeaderStyle, table.PadOrTruncate(title, c.width))
		}
		seps[i] = styles.Render(styles.Dim, strings.Repeat("─", c.width))
	}
	sb.WriteString(strings.Join(headers, "  "))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(seps, "  "))
	sb.WriteString("\n")

	end := min(m.scrollY+m.visibleRowCount(), len(m.records))
	for idx := m.scrollY; idx < end; idx++ {
		r := m.records[idx]
		cells := make([]string, len(cols))
		for i, c := range cols {
			text := table.PadOrTruncate(c.cell(r, m.tr, now), c.width)
			switch {
			case idx == m.cursor:
				cells[i] = styles.Render(styles.SelectedStyle, text)
			case c.style != nil:
				cells[i] = c.style(r, now, text)
			default:
				cells[i] = text
			}
		}
		sep := "  "
		if idx == m.cursor {
			sep = styles.Render(styles.SelectedStyle, sep)
		}
		sb.WriteString(strings.Join(cells, sep))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) renderInfo() string {
	r := *m.info
	now := m.now()
	label := func(key string) string {
		return styles.Render(styles.HeaderStyle, fmt.Sprintf("%-12s", m.tr.T(key)))
	}

	lines := []string{
		styles.SectionHeader(m.tr.T("Invite_details")),
		"",
		label("ID") + styles.ID(r.ID, false),
		label("Email") + r.Email,
		label("Invite_type") + table.TypeLabel(m.tr, r.Type),
		label("Role") + r.Role,
		label("Invited_by") + r.InvitedBy,
		label("Invite_status") + styles.Status(string(r.EffectiveStatus(now)), table.StatusLabel(m.tr, r.EffectiveStatus(now))),
		label("Date") + styles.Date(r.CreatedAt.Local().Format("2006-01-02 15:04")) + " " + styles.Mutef("(%s)", util.RelativeTime(r.CreatedAt, now)),
		label("Expires") + styles.Date(r.ExpiresAt.Local().Format("2006-01-02 15:04")) + " " + styles.Mutef("(%s)", util.ExpiresIn(r.ExpiresAt, now)),
		label("Resends") + fmt.Sprintf("%d", r.ResendCount),
	}
	pane := styles.PaneStyle
	if m.width > 4 {
		pane = pane.Width(min(m.width-4, 80))
	}
	if styles.NoColor() || styles.IsAccessible() {
		return strings.Join(lines, "\n") + "\n"
	}
	return pane.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

func (m model) renderFooter() string {
	page := m.snap.Page
	pages := max(page.PageCount(m.snap.State.Total()), 1)
	if !m.snap.State.IsSuccess() {
		pages = max(page.PageCount(m.lastTotal()), 1)
	}
	info := styles.MutedMsg(m.tr.T("Page_of", page.Index+1, pages) + "  ·  " + m.tr.T("Page_size", page.Size))

	var second string
	switch {
	case m.statusMsg != "" && m.now().Before(m.statusUntil):
		if m.statusErr {
			second = styles.ErrorText(m.statusMsg)
		} else {
			second = styles.SuccessMsg(m.statusMsg)
		}
	case m.mode == modeSearch:
		second = styles.MutedMsg("enter confirm  esc cancel")
	case m.mode == modeInfo:
		second = styles.MutedMsg("esc close  x revoke  s resend  y copy email")
	default:
		second = styles.MutedMsg(m.tr.T("Help_short"))
	}
	return info + "\n" + second
}

// lastTotal is the match total behind the records on screen.
func (m model) lastTotal() int {
	if m.pending >= 0 {
		return m.pending
	}
	return len(m.records)
}
