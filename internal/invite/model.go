// Package invite defines pending-invitation records and the query shape used
// to page through them. Stores in internal/db implement the persistence;
// internal/listing drives the interactive view over them.
package invite

import (
	"fmt"
	"strings"
	"time"
)

// Type is how an invite reaches its recipient.
type Type string

const (
	TypeEmail Type = "email" // sent to an address
	TypeLink  Type = "link"  // shareable link, email is informational
)

// ParseType parses an invite type, case-insensitively.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeEmail, "":
		return TypeEmail, nil
	case TypeLink:
		return TypeLink, nil
	}
	return "", fmt.Errorf("unknown invite type %q (want email or link)", s)
}

// Status is the lifecycle state of an invite.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// ParseStatus parses a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusAccepted, StatusExpired, StatusRevoked:
		return st, nil
	}
	return "", fmt.Errorf("unknown invite status %q", s)
}

// Record is one invitation as stored.
type Record struct {
	ID          string
	Type        Type
	Email       string
	Role        string
	InvitedBy   string
	TokenHash   string
	Status      Status
	ResendCount int
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}

// EffectiveStatus reports expired for pending invites whose expiry has been
// reached; an invite expires at ExpiresAt, not after it. Stores only flip
// the stored status lazily.
func (r Record) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusPending && !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}

// IsPending reports whether the invite still awaits a response.
func (r Record) IsPending(now time.Time) bool {
	return r.EffectiveStatus(now) == StatusPending
}
