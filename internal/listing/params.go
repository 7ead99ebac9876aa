package listing

import (
	"fmt"

	"github.com/imgajeed76/pinvite/internal/invite"
)

// QueryParams is the exact input to one fetch. It is a comparable value;
// two fetches with equal params ask the store the same question.
type QueryParams struct {
	Search string
	Sort   SortSpec
	Page   PageState
}

// Query converts the params into the store's query shape.
func (q QueryParams) Query() invite.Query {
	return invite.Query{
		Search:     q.Search,
		SortField:  q.Sort.Field,
		Descending: q.Sort.Direction == Descending,
		Limit:      q.Page.Size,
		Offset:     q.Page.Offset(),
	}
}

func (q QueryParams) String() string {
	return fmt.Sprintf("search=%q sort=%s page=%d size=%d", q.Search, q.Sort, q.Page.Index, q.Page.Size)
}
