package util

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewULID generates a new invite ID.
// ULIDs sort by creation time, which the date column relies on as a tiebreak.
func NewULID() string {
	return NewULIDWithTime(time.Now())
}

// NewULIDWithTime generates a ULID for a specific time.
func NewULIDWithTime(t time.Time) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ParseULID parses a ULID string and returns its timestamp.
func ParseULID(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(strings.ToUpper(s))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()), nil
}

// ValidateULID checks if a string is a full, valid ULID.
func ValidateULID(s string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(s))
	return err == nil
}

// ShortID returns the last 7 characters of an ID in lowercase.
// The tail of a ULID carries the entropy, the head only the timestamp.
func ShortID(id string) string {
	if len(id) <= 7 {
		return strings.ToLower(id)
	}
	return strings.ToLower(id[len(id)-7:])
}

// IsIDPrefix reports whether ref could be a short or full form of id.
// Short IDs are matched against the tail, as printed by ShortID.
func IsIDPrefix(ref, id string) bool {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	id = strings.ToUpper(id)
	if ref == "" {
		return false
	}
	return ref == id || strings.HasSuffix(id, ref)
}
