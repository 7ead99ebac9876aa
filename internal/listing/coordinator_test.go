package listing

import (
	"errors"
	"testing"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_Lifecycle(t *testing.T) {
	c := NewCoordinator()
	require.True(t, c.State().IsIdle())

	_, ok := c.Retry()
	assert.False(t, ok, "nothing to retry yet")

	q := QueryParams{Page: NewPageState(10)}
	req := c.Begin(q)
	require.True(t, c.State().IsLoading())

	require.True(t, c.Resolve(req, invite.Page{Records: records("a"), Total: 1}, nil))
	st := c.State()
	require.True(t, st.IsSuccess())
	assert.Equal(t, 1, st.Total())
	assert.Equal(t, q, st.Params())

	// A request resolves once.
	assert.False(t, c.Resolve(req, invite.Page{}, nil))
}

func TestCoordinator_LastRequestWins(t *testing.T) {
	c := NewCoordinator()

	a := c.Begin(QueryParams{Search: "a", Page: NewPageState(10)})
	b := c.Begin(QueryParams{Search: "b", Page: NewPageState(10)})

	// B resolves first, then the slower A.
	require.True(t, c.Resolve(b, invite.Page{Records: records("b1"), Total: 1}, nil))
	assert.False(t, c.Resolve(a, invite.Page{Records: records("a1", "a2"), Total: 2}, nil))

	st := c.State()
	require.True(t, st.IsSuccess())
	assert.Equal(t, "b", st.Params().Search)
	assert.Equal(t, "b1", st.Records()[0].ID)
}

func TestCoordinator_StaleResultDroppedWhileLoading(t *testing.T) {
	c := NewCoordinator()

	a := c.Begin(QueryParams{Search: "a"})
	c.Begin(QueryParams{Search: "b"})

	assert.False(t, c.Resolve(a, invite.Page{Total: 9}, nil))
	assert.True(t, c.State().IsLoading())
}

func TestCoordinator_ErrorThenRetry(t *testing.T) {
	c := NewCoordinator()
	q := QueryParams{Search: "x", Page: NewPageState(5)}

	req := c.Begin(q)
	boom := errors.New("boom")
	require.True(t, c.Resolve(req, invite.Page{Records: records("kept?")}, boom))

	st := c.State()
	require.True(t, st.IsError())
	assert.Nil(t, st.Records(), "no partial data alongside an error")
	assert.ErrorIs(t, st.Err(), boom)

	retry, ok := c.Retry()
	require.True(t, ok)
	assert.Equal(t, q, retry.Params)
	assert.Greater(t, retry.Seq, req.Seq)
	assert.True(t, c.State().IsLoading())

	require.True(t, c.Resolve(retry, invite.Page{}, nil))
	assert.True(t, c.State().IsEmpty())
}

func TestCoordinator_ReissueSameParamsSupersedes(t *testing.T) {
	c := NewCoordinator()
	q := QueryParams{Search: "same"}

	first := c.Begin(q)
	second := c.Begin(q)

	assert.False(t, c.Resolve(first, invite.Page{Total: 1}, nil))
	assert.True(t, c.Resolve(second, invite.Page{Total: 2}, nil))
	assert.Equal(t, 2, c.State().Total())
}
