package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout pinvite
var (
	ErrInviteNotFound    = errors.New("invite not found")
	ErrAlreadyAccepted   = errors.New("invite already accepted")
	ErrNotPending        = errors.New("invite is not pending")
	ErrNoDatabase        = errors.New("no database configured")
	ErrSchemaMissing     = errors.New("invite schema not initialized")
	ErrMailNotConfigured = errors.New("mail provider not configured")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidID         = errors.New("invalid invite ID")
	ErrAmbiguousID       = errors.New("ambiguous invite ID")
	ErrNotInteractive    = errors.New("not an interactive terminal")
)

// CLIError is a structured error with context and suggestions
type CLIError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *CLIError) Error() string {
	return e.Title
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *CLIError) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new CLIError
func NewError(title string) *CLIError {
	return &CLIError{Title: title}
}

// WithMessage adds a detailed message
func (e *CLIError) WithMessage(msg string) *CLIError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *CLIError) WithContext(ctx string) *CLIError {
	e.Context = ctx
	return e
}

// WithCauses adds possible causes
func (e *CLIError) WithCauses(causes ...string) *CLIError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestion adds an actionable suggestion
func (e *CLIError) WithSuggestion(sug string) *CLIError {
	e.Suggestions = append(e.Suggestions, sug)
	return e
}

// WithSuggestions adds multiple suggestions
func (e *CLIError) WithSuggestions(sugs ...string) *CLIError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *CLIError) Wrap(err error) *CLIError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// NoDatabaseError is returned when neither a URL nor the sqlite driver is set.
func NoDatabaseError() *CLIError {
	return NewError("No database configured").
		WithMessage("pinvite needs a PostgreSQL URL or the sqlite driver").
		WithSuggestions(
			"pinvite config set database.url postgres://user@host/db",
			"pinvite config set database.driver sqlite",
		).
		Wrap(ErrNoDatabase)
}

// DatabaseConnectionError returns a structured error for DB connection issues
func DatabaseConnectionError(target string, err error) *CLIError {
	return NewError("Cannot connect to database").
		WithContext(target).
		WithCauses(
			"Database server is not running",
			"Invalid connection credentials",
			"Database does not exist",
		).
		WithSuggestions(
			"pinvite doctor         # Run diagnostics",
			"pinvite config get database.url",
		).
		Wrap(err)
}

// SchemaMissingError is returned when the invites table does not exist yet.
func SchemaMissingError() *CLIError {
	return NewError("Invite schema not initialized").
		WithSuggestions("pinvite init           # Create the invites table").
		Wrap(ErrSchemaMissing)
}

// InviteNotFoundError returns a structured error for a missing invite
func InviteNotFoundError(ref string) *CLIError {
	return NewError(fmt.Sprintf("Invite '%s' not found", ref)).
		WithCauses(
			"The invite ID is incorrect",
			"The invite was already accepted or revoked",
		).
		WithSuggestions("pinvite list --plain   # List pending invites").
		Wrap(ErrInviteNotFound)
}

// AmbiguousIDError is returned when a short ID matches several invites.
func AmbiguousIDError(ref string, n int) *CLIError {
	return NewError(fmt.Sprintf("Invite ID '%s' is ambiguous", ref)).
		WithMessage(fmt.Sprintf("%d invites match; use more characters", n)).
		Wrap(ErrAmbiguousID)
}

// MailNotConfiguredError is returned by commands that must deliver mail.
func MailNotConfiguredError() *CLIError {
	return NewError("Mail delivery is not configured").
		WithSuggestions(
			"pinvite config set mail.provider resend",
			"pinvite config set mail.api_key <key>",
			"pinvite config set mail.from invites@example.com",
		).
		Wrap(ErrMailNotConfigured)
}

// MissingArgumentError returns an error for missing required argument
func MissingArgumentError(argName, example string) *CLIError {
	e := NewError(fmt.Sprintf("Missing required argument: <%s>", argName))
	if example != "" {
		e.WithSuggestion(example)
	}
	return e
}
