package invite

import (
	"fmt"
	"strings"
)

// SortField is one of the sortable columns of the invite list.
type SortField string

const (
	SortByType   SortField = "type"
	SortByEmail  SortField = "email"
	SortByDate   SortField = "date"
	SortByStatus SortField = "status"
)

// SortFields lists every sortable field in column order.
var SortFields = []SortField{SortByType, SortByEmail, SortByDate, SortByStatus}

// ParseSortField parses a sort field name. "name" and "emails.address" are
// accepted as aliases used by older exports.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type", "name":
		return SortByType, nil
	case "email", "emails.address":
		return SortByEmail, nil
	case "date", "created", "created_at":
		return SortByDate, nil
	case "status":
		return SortByStatus, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want type, email, date or status)", s)
}

// Query describes one page request against a store.
type Query struct {
	Search     string
	SortField  SortField
	Descending bool
	Limit      int
	Offset     int
	// Statuses restricts results; empty means pending only.
	Statuses []Status
}

// StatusFilter returns the statuses the query selects.
func (q Query) StatusFilter() []Status {
	if len(q.Statuses) == 0 {
		return []Status{StatusPending}
	}
	return q.Statuses
}

// Page is a store's answer to a Query.
type Page struct {
	Records []Record
	Total   int
}
