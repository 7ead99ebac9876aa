package listing

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_StartIssuesFirstFetch(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{Clock: &manualClock{}})
	defer c.Close()

	assert.True(t, c.Snapshot().State.IsIdle())
	f.none(t)

	c.Start()
	call := f.next(t)
	assert.Equal(t, invite.Query{SortField: invite.SortByType, Limit: DefaultPageSize}, call.Query)
	assert.True(t, c.Snapshot().State.IsLoading())

	call.Succeed(records("a", "b"), 2)
	snap := waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	assert.Len(t, snap.State.Records(), 2)

	c.Start()
	f.none(t)
}

func TestController_DebouncedSearchIssuesOneFetch(t *testing.T) {
	clock := &manualClock{}
	f := newGatedFetcher()
	c := New(f, Options{Clock: clock, Debounce: 500 * time.Millisecond})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(nil, 0)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	for _, v := range []string{"j", "ja", "jan", "jane"} {
		c.SetSearch(v)
		clock.Advance(100 * time.Millisecond)
	}
	snap := c.Snapshot()
	assert.Equal(t, "jane", snap.RawSearch)
	assert.Equal(t, "", snap.Search)
	f.none(t)

	clock.Advance(500 * time.Millisecond)
	call := f.next(t)
	assert.Equal(t, "jane", call.Query.Search)
	f.none(t)
}

func TestController_PageResetsOnSortChange(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{Clock: &manualClock{}, PageSize: 10})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(records("a"), 100)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.SetPageIndex(3)
	call := f.next(t)
	assert.Equal(t, 30, call.Query.Offset)
	call.Succeed(records("p3"), 100)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.ToggleSort(invite.SortByDate)
	call = f.next(t)
	assert.Equal(t, 0, call.Query.Offset, "sorting must go back to the first page")
	assert.Equal(t, invite.SortByDate, call.Query.SortField)
	assert.False(t, call.Query.Descending)
	assert.Equal(t, 0, c.Snapshot().Page.Index)
}

func TestController_PageResetsOnSearchChange(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true, PageSize: 10})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(records("a"), 100)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.SetPageIndex(2)
	f.next(t).Succeed(records("b"), 100)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.SetSearch("acme")
	call := f.next(t)
	assert.Equal(t, "acme", call.Query.Search)
	assert.Equal(t, 0, call.Query.Offset)
}

func TestController_PageSizeResetsIndex(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true, PageSize: 10})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(records("a"), 100)
	c.SetPageIndex(4)
	f.next(t).Succeed(records("b"), 100)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() && s.Page.Index == 4 })

	c.SetPageSize(50)
	call := f.next(t)
	assert.Equal(t, 50, call.Query.Limit)
	assert.Equal(t, 0, call.Query.Offset)

	c.SetPageSize(50)
	f.none(t)
}

func TestController_LastRequestWins(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(nil, 0)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.SetSearch("a")
	c.SetSearch("b")
	bySearch := map[string]*fetchCall{}
	for i := 0; i < 2; i++ {
		call := f.next(t)
		bySearch[call.Query.Search] = call
	}
	callA, callB := bySearch["a"], bySearch["b"]
	require.NotNil(t, callA)
	require.NotNil(t, callB)

	// B resolves first; A, issued earlier, resolves later.
	callB.Succeed(records("b1"), 1)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	callA.Succeed(records("a1", "a2"), 2)
	c.Wait()

	st := c.Snapshot().State
	require.True(t, st.IsSuccess())
	assert.Equal(t, "b", st.Params().Search)
	require.Len(t, st.Records(), 1)
	assert.Equal(t, "b1", st.Records()[0].ID)
}

func TestController_ReloadUsesCurrentParams(t *testing.T) {
	f := newGatedFetcher()
	bridge := NewReloadBridge()
	c := New(f, Options{NoDebounce: true, Reload: bridge})
	defer c.Close()

	assert.False(t, bridge.Registered(), "nothing registered before start")

	c.Start()
	f.next(t).Succeed(records("p1"), 1)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	require.True(t, bridge.Registered())

	c.SetSearch("p2")
	f.next(t).Succeed(records("p2"), 1)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() && s.Search == "p2" })

	require.True(t, bridge.Invoke())
	call := f.next(t)
	assert.Equal(t, "p2", call.Query.Search)

	// User input survives a reload.
	snap := c.Snapshot()
	assert.Equal(t, "p2", snap.RawSearch)
	assert.True(t, snap.State.IsLoading())
}

func TestController_ReloadAfterCloseIsNoop(t *testing.T) {
	f := newGatedFetcher()
	bridge := NewReloadBridge()
	c := New(f, Options{NoDebounce: true, Reload: bridge})

	c.Start()
	f.next(t).Succeed(nil, 0)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	c.Close()

	assert.True(t, bridge.Invoke())
	f.none(t)
}

func TestController_ErrorAndRetry(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true, Search: "zed"})
	defer c.Close()

	c.Start()
	first := f.next(t)
	first.Fail(errors.New("connection reset"))
	snap := waitFor(t, c, func(s Snapshot) bool { return s.State.IsError() })
	assert.Nil(t, snap.State.Records())
	assert.EqualError(t, snap.State.Err().Cause, "connection reset")

	c.Retry()
	again := f.next(t)
	assert.Equal(t, first.Query, again.Query)
	assert.True(t, c.Snapshot().State.IsLoading())

	again.Succeed(nil, 0)
	snap = waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	assert.True(t, snap.State.IsEmpty())
}

func TestController_EmptyResultDistinctFromLoading(t *testing.T) {
	f := newGatedFetcher()
	var mu sync.Mutex
	var statuses []Status
	c := New(f, Options{
		NoDebounce: true,
		OnChange: func(s Snapshot) {
			mu.Lock()
			statuses = append(statuses, s.State.Status())
			mu.Unlock()
		},
	})
	defer c.Close()

	c.Start()
	loading := c.Snapshot().State
	f.next(t).Succeed(nil, 0)
	empty := waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() }).State

	assert.True(t, loading.IsLoading())
	assert.False(t, loading.IsEmpty())
	assert.True(t, empty.IsEmpty())
	assert.NotEqual(t, loading.Status(), empty.Status())

	c.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, statuses)
}

func TestController_ClampsWhenTotalShrinks(t *testing.T) {
	f := newGatedFetcher()
	var pending []int
	var mu sync.Mutex
	c := New(f, Options{
		NoDebounce: true,
		PageSize:   10,
		OnPendingCount: func(n int) {
			mu.Lock()
			pending = append(pending, n)
			mu.Unlock()
		},
	})
	defer c.Close()

	c.Start()
	f.next(t).Succeed(records("a"), 31)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	c.Wait()
	c.SetPageIndex(3)
	f.next(t).Succeed(records("last"), 31)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() && s.Page.Index == 3 })
	c.Wait()

	// The only invite on page 4 got revoked elsewhere.
	c.Reload()
	f.next(t).Succeed(nil, 30)

	call := f.next(t)
	assert.Equal(t, 20, call.Query.Offset)
	assert.Equal(t, 2, c.Snapshot().Page.Index)
	call.Succeed(records("x"), 30)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{31, 31, 30, 30}, pending)
}

func TestController_NextPrevPage(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true, PageSize: 10})
	defer c.Close()

	c.PrevPage()
	c.Start()
	f.next(t).Succeed(records("a"), 15)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.NextPage()
	call := f.next(t)
	assert.Equal(t, 10, call.Query.Offset)
	call.Succeed(records("b"), 15)
	waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })

	c.NextPage()
	f.none(t)

	c.PrevPage()
	assert.Equal(t, 0, f.next(t).Query.Offset)
}

func TestController_InputsBeforeStartDoNotFetch(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true})
	defer c.Close()

	c.SetSearch("early")
	c.ToggleSort(invite.SortByEmail)
	c.ToggleSort(invite.SortByEmail)
	c.Reload()
	c.Retry()
	f.none(t)

	c.Start()
	call := f.next(t)
	assert.Equal(t, "early", call.Query.Search)
	assert.Equal(t, invite.SortByEmail, call.Query.SortField)
	assert.True(t, call.Query.Descending)
}

func TestController_CloseCancelsPendingWork(t *testing.T) {
	clock := &manualClock{}
	f := newGatedFetcher()
	c := New(f, Options{Clock: clock})

	c.Start()
	f.next(t) // left unanswered
	c.SetSearch("never sent")
	require.Equal(t, 1, clock.Active())

	c.Close()
	assert.Equal(t, 0, clock.Active())
	clock.Advance(time.Minute)
	f.none(t)

	c.SetSearch("ignored")
	c.ToggleSort(invite.SortByStatus)
	assert.False(t, c.Activate("id", &PointerActivation{}))
}

func TestController_ActivateRoutesInfoIntent(t *testing.T) {
	r := &intents{}
	c := New(newGatedFetcher(), Options{Router: r})
	defer c.Close()

	assert.False(t, c.Activate("inv-1", &KeyActivation{Key: "Tab"}))
	assert.True(t, c.Activate("inv-1", &KeyActivation{Key: "Enter"}))
	assert.Equal(t, []Intent{{Context: "info", ID: "inv-1"}}, r.got)
}

func TestController_SnapshotVersionsIncrease(t *testing.T) {
	f := &recordingFetcher{}
	var mu sync.Mutex
	var versions []uint64
	c := New(f, Options{
		NoDebounce: true,
		OnChange: func(s Snapshot) {
			mu.Lock()
			versions = append(versions, s.Version)
			mu.Unlock()
		},
	})
	c.Start()
	c.Wait()
	c.ToggleSort(invite.SortByEmail)
	c.Wait()
	c.Close()

	assert.Len(t, f.Queries(), 2)
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, versions)
	seen := map[uint64]bool{}
	for _, v := range versions {
		assert.False(t, seen[v], "version %d delivered twice", v)
		seen[v] = true
	}
}

func TestController_SnapshotCarriesPendingTotal(t *testing.T) {
	f := newGatedFetcher()
	c := New(f, Options{NoDebounce: true})
	defer c.Close()

	assert.Equal(t, -1, c.Snapshot().Pending)

	c.Start()
	f.next(t).Succeed(records("a"), 12)
	snap := waitFor(t, c, func(s Snapshot) bool { return s.State.IsSuccess() })
	assert.Equal(t, 12, snap.Pending)

	// a failed fetch keeps the last known total
	c.Reload()
	f.next(t).Fail(errors.New("connection reset"))
	snap = waitFor(t, c, func(s Snapshot) bool { return s.State.IsError() })
	assert.Equal(t, 12, snap.Pending)
}

func TestController_ConcurrentSearchInputSettlesOnLastTerm(t *testing.T) {
	f := &recordingFetcher{}
	c := New(f, Options{NoDebounce: true})
	defer c.Close()
	c.Start()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				c.SetSearch(fmt.Sprintf("g%d-%d", g, i))
				if i%5 == 0 {
					c.SubmitSearch()
				}
			}
		}()
	}
	wg.Wait()
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, snap.RawSearch, snap.Search)
	assert.Equal(t, snap.RawSearch, c.debouncer.Value())
	assert.False(t, c.debouncer.Pending())
}
