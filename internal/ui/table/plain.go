package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/pinvite/internal/invite"
)

type jsonRecord struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Email       string    `json:"email"`
	Role        string    `json:"role,omitempty"`
	InvitedBy   string    `json:"invited_by,omitempty"`
	Status      string    `json:"status"`
	ResendCount int       `json:"resend_count"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type jsonPage struct {
	Total   int          `json:"total"`
	Records []jsonRecord `json:"records"`
}

// PrintJSONResults writes the page as a JSON object with the match total and
// the records on this page. Status is the effective status at now.
func PrintJSONResults(w io.Writer, page invite.Page, now time.Time) error {
	out := jsonPage{Total: page.Total, Records: make([]jsonRecord, len(page.Records))}
	for i, r := range page.Records {
		out.Records[i] = jsonRecord{
			ID:          r.ID,
			Type:        string(r.Type),
			Email:       r.Email,
			Role:        r.Role,
			InvitedBy:   r.InvitedBy,
			Status:      string(r.EffectiveStatus(now)),
			ResendCount: r.ResendCount,
			CreatedAt:   r.CreatedAt.UTC(),
			ExpiresAt:   r.ExpiresAt.UTC(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// PrintRaw writes one tab-separated line per row.
func PrintRaw(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// PrintPlainTable prints a properly aligned table for non-TTY output.
// Shows full content without truncation.
func PrintPlainTable(w io.Writer, colNames []string, rows [][]string, footer string) error {
	if len(colNames) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	colWidths := make([]int, len(colNames))
	for i, name := range colNames {
		colWidths[i] = lipgloss.Width(name)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(colWidths) && lipgloss.Width(val) > colWidths[i] {
				colWidths[i] = lipgloss.Width(val)
			}
		}
	}

	var sb strings.Builder
	writeLine := func(cells []string) {
		for i, val := range cells {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(colWidths)-1 {
				sb.WriteString(val)
			} else {
				sb.WriteString(pad(val, colWidths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeLine(colNames)
	seps := make([]string, len(colWidths))
	for i, cw := range colWidths {
		seps[i] = strings.Repeat("─", cw)
	}
	writeLine(seps)
	for _, row := range rows {
		writeLine(row)
	}

	sb.WriteString("\n")
	if footer == "" {
		footer = fmt.Sprintf("%d rows", len(rows))
	}
	sb.WriteString("(" + footer + ")\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// pad adds spaces to reach the desired display width (no truncation).
func pad(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Truncate shortens a string to fit width, adding "…" if needed.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width > 1 {
		return string(r[:width-1]) + "…"
	}
	return string(r[:width])
}

// PadOrTruncate pads or truncates to exact width (for the browser table).
func PadOrTruncate(s string, width int) string {
	s = Truncate(s, width)
	return pad(s, width)
}
