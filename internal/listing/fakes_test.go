package listing

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/require"
)

// manualClock fires timers only when the test advances it.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (c *manualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fetchReply struct {
	page invite.Page
	err  error
}

// fetchCall is one blocked List call; the test decides when and how it
// resolves.
type fetchCall struct {
	Query invite.Query
	reply chan fetchReply
}

func (c *fetchCall) Succeed(records []invite.Record, total int) {
	c.reply <- fetchReply{page: invite.Page{Records: records, Total: total}}
}

func (c *fetchCall) Fail(err error) {
	c.reply <- fetchReply{err: err}
}

// gatedFetcher hands every call to the test through a channel.
type gatedFetcher struct {
	calls chan *fetchCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *fetchCall, 64)}
}

func (f *gatedFetcher) List(ctx context.Context, q invite.Query) (invite.Page, error) {
	call := &fetchCall{Query: q, reply: make(chan fetchReply, 1)}
	f.calls <- call
	select {
	case r := <-call.reply:
		return r.page, r.err
	case <-ctx.Done():
		return invite.Page{}, ctx.Err()
	}
}

// next waits for the next issued fetch.
func (f *gatedFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

// none asserts no fetch has been issued.
func (f *gatedFetcher) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch: %+v", c.Query)
	default:
	}
}

// recordingFetcher answers immediately and remembers every query.
type recordingFetcher struct {
	mu      sync.Mutex
	queries []invite.Query
	page    func(q invite.Query) (invite.Page, error)
}

func (f *recordingFetcher) List(_ context.Context, q invite.Query) (invite.Page, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	page := f.page
	f.mu.Unlock()
	if page == nil {
		return invite.Page{}, nil
	}
	return page(q)
}

func (f *recordingFetcher) Queries() []invite.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]invite.Query(nil), f.queries...)
}

func records(ids ...string) []invite.Record {
	out := make([]invite.Record, len(ids))
	for i, id := range ids {
		out[i] = invite.Record{ID: id, Email: id + "@example.com", Status: invite.StatusPending}
	}
	return out
}

func waitFor(t *testing.T, c *Controller, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return cond(snap)
	}, 2*time.Second, 5*time.Millisecond)
	return snap
}
