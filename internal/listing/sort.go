package listing

import (
	"fmt"
	"strings"

	"github.com/imgajeed76/pinvite/internal/invite"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// DefaultDirection is what a newly activated sort field starts with.
const DefaultDirection = Ascending

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// ParseDirection accepts asc/desc and their long forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
}

// SortSpec is the single active sort column and its direction.
type SortSpec struct {
	Field     invite.SortField
	Direction Direction
}

// DefaultSort sorts by invite type, ascending.
func DefaultSort() SortSpec {
	return SortSpec{Field: invite.SortByType, Direction: DefaultDirection}
}

// Toggle applies a header click: the active field flips direction, any other
// field becomes active with the default direction.
func (s SortSpec) Toggle(field invite.SortField) SortSpec {
	if field == s.Field {
		return SortSpec{Field: field, Direction: s.Direction.Flip()}
	}
	return SortSpec{Field: field, Direction: DefaultDirection}
}

// Active reports whether field is the one being sorted on.
func (s SortSpec) Active(field invite.SortField) bool {
	return s.Field == field
}

func (s SortSpec) String() string {
	return fmt.Sprintf("%s %s", s.Field, s.Direction)
}
