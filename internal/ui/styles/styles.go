package styles

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "●"
	SymbolPending = "○"
	SymbolArrow   = "→"
	SymbolAsc     = "▲"
	SymbolDesc    = "▼"
)

// NoColor checks if colors should be disabled
func NoColor() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("PINVITE_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, no spinner, simplified output
func IsAccessible() bool {
	return os.Getenv("PINVITE_ACCESSIBLE") == "1" || os.Getenv("PINVITE_ACCESSIBLE") == "true"
}

// Base text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(Muted)
	Underline = lipgloss.NewStyle().Underline(true)
)

// Semantic styles - use these instead of raw colors
var (
	// Invite status
	Pending  = lipgloss.NewStyle().Foreground(ColorPending)
	Accepted = lipgloss.NewStyle().Foreground(ColorAccepted)
	Expired  = lipgloss.NewStyle().Foreground(ColorExpired)
	Revoked  = lipgloss.NewStyle().Foreground(ColorRevoked)

	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Invite display
	IDStyle    = lipgloss.NewStyle().Foreground(ColorID)
	LinkStyle  = lipgloss.NewStyle().Foreground(ColorLink)
	EmailStyle = lipgloss.NewStyle()
	DateStyle  = lipgloss.NewStyle().Foreground(Muted)

	// Interactive TUI
	SelectedStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)

	HeaderStyle       = lipgloss.NewStyle().Bold(true).Foreground(TextSecondary)
	ActiveHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Accent)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BgBorder).
			Padding(0, 1)

	// Help bar
	HelpKey   = lipgloss.NewStyle().Foreground(Accent)
	HelpValue = lipgloss.NewStyle().Foreground(Muted)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// ID formats an invite ID (always lowercase, optionally short)
func ID(id string, short bool) string {
	id = strings.ToLower(id)
	if short && len(id) > 7 {
		id = id[len(id)-7:]
	}
	return Render(IDStyle, id)
}

// Date formats a date/timestamp
func Date(date string) string {
	return Render(DateStyle, date)
}

// Status colors an invite status label. label is the text to show (it may
// be translated); status selects the color.
func Status(status, label string) string {
	switch status {
	case "pending":
		return Render(Pending, label)
	case "accepted":
		return Render(Accepted, label)
	case "expired":
		return Render(Expired, label)
	case "revoked":
		return Render(Revoked, label)
	default:
		return label
	}
}

// SortIndicator returns the arrow for an active sort column.
func SortIndicator(descending bool) string {
	if NoColor() || IsAccessible() {
		if descending {
			return "v"
		}
		return "^"
	}
	if descending {
		return SymbolDesc
	}
	return SymbolAsc
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

// SectionHeader formats a section header
func SectionHeader(title string) string {
	return Render(Bold, title)
}

// HelpLine formats a help line (key description)
func HelpLine(key, description string) string {
	return fmt.Sprintf("  %s %s", Render(HelpKey, key), Render(MutedStyle, description))
}

// Indent returns text indented by n spaces
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func Cyan(s string) string      { return Render(InfoStyle, s) }
func Mute(s string) string      { return Render(MutedStyle, s) }
func ErrorText(s string) string { return Render(ErrorStyle, s) }

// Printf-style color functions
func Mutef(format string, a ...any) string    { return Mute(fmt.Sprintf(format, a...)) }
func Boldf(format string, a ...any) string    { return Render(Bold, fmt.Sprintf(format, a...)) }
func Errorf(format string, a ...any) string   { return ErrorText(fmt.Sprintf(format, a...)) }
func Successf(format string, a ...any) string { return Render(SuccessStyle, fmt.Sprintf(format, a...)) }
func Warningf(format string, a ...any) string { return Render(WarningStyle, fmt.Sprintf(format, a...)) }
