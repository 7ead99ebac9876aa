package listing

// DefaultPageSize matches the page size the browser opens with.
const DefaultPageSize = 25

// PageSizes are the steps offered by the page-size control.
var PageSizes = []int{25, 50, 100}

// PageState is a page position within a fixed query.
type PageState struct {
	Index int
	Size  int
}

// NewPageState returns the first page of the given size.
func NewPageState(size int) PageState {
	return PageState{}.WithSize(size)
}

// WithSize changes the page size and goes back to the first page.
func (p PageState) WithSize(n int) PageState {
	if n < 1 {
		n = 1
	}
	return PageState{Index: 0, Size: n}
}

// WithIndex moves to page i.
func (p PageState) WithIndex(i int) PageState {
	if i < 0 {
		i = 0
	}
	p.Index = i
	return p
}

// First returns the first page at the same size.
func (p PageState) First() PageState {
	p.Index = 0
	return p
}

// Offset is the number of records before this page.
func (p PageState) Offset() int {
	return p.Index * p.Size
}

// PageCount is the number of pages needed to show total records.
func (p PageState) PageCount(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// Clamp moves back to the last non-empty page when total no longer reaches
// the current offset.
func (p PageState) Clamp(total int) PageState {
	if p.Index == 0 || p.Offset() < total {
		return p
	}
	last := p.PageCount(total) - 1
	if last < 0 {
		last = 0
	}
	p.Index = last
	return p
}

// HasNext reports whether another page follows for total records.
func (p PageState) HasNext(total int) bool {
	return p.Offset()+p.Size < total
}

// HasPrev reports whether a page precedes this one.
func (p PageState) HasPrev() bool {
	return p.Index > 0
}
