package listing

import (
	"errors"
	"testing"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSpec_ToggleSameFieldFlips(t *testing.T) {
	for _, field := range invite.SortFields {
		start := SortSpec{Field: field, Direction: Ascending}
		once := start.Toggle(field)
		assert.Equal(t, field, once.Field)
		assert.Equal(t, Descending, once.Direction)
		assert.Equal(t, start, once.Toggle(field))
	}
}

func TestSortSpec_ToggleOtherFieldResetsDirection(t *testing.T) {
	for _, from := range invite.SortFields {
		for _, to := range invite.SortFields {
			if from == to {
				continue
			}
			for _, dir := range []Direction{Ascending, Descending} {
				got := SortSpec{Field: from, Direction: dir}.Toggle(to)
				assert.Equal(t, SortSpec{Field: to, Direction: DefaultDirection}, got)
			}
		}
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)

	d, err = ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestPageState_SizeChangeResetsIndex(t *testing.T) {
	p := NewPageState(25).WithIndex(3)
	require.Equal(t, 75, p.Offset())

	p = p.WithSize(50)
	assert.Equal(t, PageState{Index: 0, Size: 50}, p)

	assert.Equal(t, 1, PageState{}.WithSize(0).Size)
	assert.Equal(t, 0, p.WithIndex(-2).Index)
}

func TestPageState_Clamp(t *testing.T) {
	p := PageState{Index: 4, Size: 10}

	assert.Equal(t, p, p.Clamp(100), "offset still inside total")
	assert.Equal(t, 2, p.Clamp(30).Index, "offset 40 past 30 records")
	assert.Equal(t, 2, p.Clamp(21).Index)
	assert.Equal(t, 0, p.Clamp(0).Index)
	assert.Equal(t, 0, p.Clamp(5).Index)

	// The invariant: offset never exceeds the total by a full page.
	for total := 0; total < 60; total++ {
		c := p.Clamp(total)
		assert.LessOrEqual(t, c.Offset(), total+c.Size, "total=%d", total)
		if total > 0 {
			assert.Less(t, c.Offset(), total, "total=%d", total)
		}
	}
}

func TestPageState_Navigation(t *testing.T) {
	p := NewPageState(10)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext(11))
	assert.False(t, p.HasNext(10))
	assert.Equal(t, 2, p.PageCount(11))
	assert.Equal(t, 0, p.PageCount(0))
}

func TestQueryParams_Query(t *testing.T) {
	q := QueryParams{
		Search: "bob",
		Sort:   SortSpec{Field: invite.SortByDate, Direction: Descending},
		Page:   PageState{Index: 2, Size: 25},
	}.Query()

	assert.Equal(t, invite.Query{
		Search:     "bob",
		SortField:  invite.SortByDate,
		Descending: true,
		Limit:      25,
		Offset:     50,
	}, q)
}

func TestFetchState_EmptyIsNotLoading(t *testing.T) {
	q := QueryParams{Page: NewPageState(10)}

	loading := loadingState(q)
	empty := successState(q, invite.Page{})

	assert.True(t, loading.IsLoading())
	assert.False(t, loading.IsEmpty())
	assert.True(t, empty.IsSuccess())
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Records())
	assert.NotEqual(t, loading.Status(), empty.Status())
}

func TestFetchFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	st := errorState(QueryParams{}, cause)

	require.True(t, st.IsError())
	assert.Nil(t, st.Records())
	assert.ErrorIs(t, st.Err(), cause)

	var ff *FetchFailure
	require.True(t, errors.As(error(st.Err()), &ff))
	assert.Contains(t, ff.Error(), "connection refused")
}
