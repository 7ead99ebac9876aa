// Package listing holds the table data controller behind the invite browser:
// a debounced search term, sort and page state, the fetch lifecycle, a
// reload bridge for sibling components, and row activation dispatch.
//
// The controller is safe for concurrent use. Every mutation happens under a
// single lock and fetches run on their own goroutines; results are applied
// in last-request-wins order. Search input is serialized separately so the
// debouncer always holds the latest raw term.
package listing

import (
	"context"
	"sync"
	"time"

	"github.com/imgajeed76/pinvite/internal/invite"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the search term must be stable before it is
// sent to the store.
const DefaultDebounce = 500 * time.Millisecond

// Fetcher loads one page of invites.
type Fetcher interface {
	List(ctx context.Context, q invite.Query) (invite.Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q invite.Query) (invite.Page, error)

func (f FetcherFunc) List(ctx context.Context, q invite.Query) (invite.Page, error) {
	return f(ctx, q)
}

// Options configures a Controller. Zero values pick defaults.
type Options struct {
	Clock    Clock
	Debounce time.Duration
	// NoDebounce applies search input immediately (Debounce is ignored).
	NoDebounce bool
	PageSize   int
	Sort       SortSpec
	Search     string

	// Reload is the parent's slot; the controller writes its reload
	// function into it. A private bridge is created when nil.
	Reload *ReloadBridge
	Router Router

	// OnChange receives a snapshot after every state change. It is called
	// without locks held; snapshots may arrive out of order, compare
	// Version to discard older ones.
	OnChange func(Snapshot)
	// OnPendingCount receives the match total after each applied result.
	// Hosts that already consume snapshots can read Snapshot.Pending.
	OnPendingCount func(int)

	Logger *zap.Logger
}

// Snapshot is a consistent view of the controller.
type Snapshot struct {
	Version   uint64
	RawSearch string
	Search    string
	Sort      SortSpec
	Page      PageState
	State     FetchState

	// Pending is the match total of the last successful fetch, -1 before
	// the first one.
	Pending int
}

// Params returns the query the snapshot's inputs describe.
func (s Snapshot) Params() QueryParams {
	return QueryParams{Search: s.Search, Sort: s.Sort, Page: s.Page}
}

// Controller coordinates search, sort and paging into debounced fetches.
type Controller struct {
	mu      sync.Mutex
	fetcher Fetcher
	logger  *zap.Logger

	// input orders SetSearch and SubmitSearch. It is never taken under mu.
	input sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debouncer  *Debouncer[string]
	coord      *Coordinator
	reload     *ReloadBridge
	dispatcher *Dispatcher

	raw    string
	search string
	sort   SortSpec
	page   PageState

	pending    int
	registered *QueryParams
	version    uint64
	started    bool
	closed     bool

	onChange  func(Snapshot)
	onPending func(int)
}

// New returns a controller over f. Nothing is fetched until Start.
func New(f Fetcher, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Sort.Field == "" {
		opts.Sort = DefaultSort()
	}
	if opts.Reload == nil {
		opts.Reload = NewReloadBridge()
	}
	delay := opts.Debounce
	if delay == 0 {
		delay = DefaultDebounce
	}
	if opts.NoDebounce {
		delay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:    f,
		logger:     opts.Logger.Named("listing"),
		ctx:        ctx,
		cancel:     cancel,
		coord:      NewCoordinator(),
		reload:     opts.Reload,
		dispatcher: NewDispatcher(opts.Router),
		raw:        opts.Search,
		search:     opts.Search,
		sort:       opts.Sort,
		page:       NewPageState(opts.PageSize),
		pending:    -1,
		onChange:   opts.OnChange,
		onPending:  opts.OnPendingCount,
	}
	c.debouncer = NewDebouncer(opts.Clock, delay, opts.Search, c.applySearch)
	return c
}

// Start issues the first fetch and registers the reload function.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.issueLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetSearch records a keystroke. The store sees the term once it has been
// stable for the debounce interval.
func (c *Controller) SetSearch(raw string) {
	c.input.Lock()
	defer c.input.Unlock()

	c.mu.Lock()
	if c.closed || raw == c.raw {
		c.mu.Unlock()
		return
	}
	c.raw = raw
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	c.debouncer.Set(raw)
}

// SubmitSearch applies the raw search term without waiting.
func (c *Controller) SubmitSearch() {
	c.input.Lock()
	defer c.input.Unlock()

	c.mu.Lock()
	raw, closed := c.raw, c.closed
	c.mu.Unlock()
	if !closed {
		c.debouncer.Flush(raw)
	}
}

// applySearch receives the debounced term. A new term invalidates the
// page position.
func (c *Controller) applySearch(term string) {
	c.mu.Lock()
	if c.closed || term == c.search {
		c.mu.Unlock()
		return
	}
	c.search = term
	c.page = c.page.First()
	c.logger.Debug("search applied", zap.String("term", term))
	c.issueLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// ToggleSort applies a click on field's header and goes back to page one.
func (c *Controller) ToggleSort(field invite.SortField) {
	c.mutate(func() bool {
		c.sort = c.sort.Toggle(field)
		c.page = c.page.First()
		return true
	})
}

// SetSort replaces the sort outright.
func (c *Controller) SetSort(spec SortSpec) {
	c.mutate(func() bool {
		if spec == c.sort {
			return false
		}
		c.sort = spec
		c.page = c.page.First()
		return true
	})
}

// SetPageSize changes the page size and goes back to page one.
func (c *Controller) SetPageSize(n int) {
	c.mutate(func() bool {
		next := c.page.WithSize(n)
		if next == c.page {
			return false
		}
		c.page = next
		return true
	})
}

// SetPageIndex moves to page i.
func (c *Controller) SetPageIndex(i int) {
	c.mutate(func() bool {
		next := c.page.WithIndex(i)
		if next == c.page {
			return false
		}
		c.page = next
		return true
	})
}

// NextPage moves forward if the last result has more pages.
func (c *Controller) NextPage() {
	c.mutate(func() bool {
		st := c.coord.State()
		if !st.IsSuccess() || !c.page.HasNext(st.Total()) {
			return false
		}
		c.page = c.page.WithIndex(c.page.Index + 1)
		return true
	})
}

// PrevPage moves back one page.
func (c *Controller) PrevPage() {
	c.mutate(func() bool {
		if !c.page.HasPrev() {
			return false
		}
		c.page = c.page.WithIndex(c.page.Index - 1)
		return true
	})
}

// Reload re-fetches with the current params, keeping user input intact.
func (c *Controller) Reload() {
	c.mutate(func() bool { return true })
}

// Retry re-issues the last fetch. It is a no-op before Start.
func (c *Controller) Retry() {
	c.mu.Lock()
	if c.closed || !c.started {
		c.mu.Unlock()
		return
	}
	req, ok := c.coord.Retry()
	if !ok {
		c.mu.Unlock()
		return
	}
	c.version++
	c.spawnLocked(req)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Activate routes a row activation through the dispatcher.
func (c *Controller) Activate(recordID string, ev Activation) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false
	}
	return c.dispatcher.Handle(recordID, ev)
}

// Reloader returns the bridge the controller registers into.
func (c *Controller) Reloader() *ReloadBridge {
	return c.reload
}

// Params returns the params the next fetch would use.
func (c *Controller) Params() QueryParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paramsLocked()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until no fetch is in flight.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels pending debounce timers and in-flight fetches and waits for
// them. The reload function becomes a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
	c.wg.Wait()
}

// mutate runs change under the lock and fetches if it reports a change.
func (c *Controller) mutate(change func() bool) {
	c.mu.Lock()
	if c.closed || !change() {
		c.mu.Unlock()
		return
	}
	c.issueLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) paramsLocked() QueryParams {
	return QueryParams{Search: c.search, Sort: c.sort, Page: c.page}
}

// issueLocked starts a fetch for the current params. Before Start only the
// inputs change.
func (c *Controller) issueLocked() {
	c.version++
	if !c.started {
		return
	}
	q := c.paramsLocked()
	c.registerLocked(q)
	c.spawnLocked(c.coord.Begin(q))
}

// registerLocked writes a fresh reload function into the bridge whenever
// the params change identity. The function reads the params at call time.
func (c *Controller) registerLocked(q QueryParams) {
	if c.registered != nil && *c.registered == q {
		return
	}
	c.registered = &q
	c.reload.Register(c.Reload)
}

func (c *Controller) spawnLocked(req Request) {
	c.logger.Debug("fetch issued", zap.Uint64("seq", req.Seq), zap.Stringer("params", req.Params))
	c.wg.Add(1)
	go c.run(req)
}

func (c *Controller) run(req Request) {
	defer c.wg.Done()
	page, err := c.fetcher.List(c.ctx, req.Params.Query())
	c.resolve(req, page, err)
}

func (c *Controller) resolve(req Request, page invite.Page, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.coord.Resolve(req, page, err) {
		c.logger.Debug("stale fetch result dropped", zap.Uint64("seq", req.Seq))
		c.mu.Unlock()
		return
	}
	c.version++

	var pending = -1
	if err != nil {
		c.logger.Warn("fetch failed", zap.Stringer("params", req.Params), zap.Error(err))
	} else {
		pending = page.Total
		c.pending = pending
		// The total shrank under the current page (e.g. after a revoke).
		if clamped := c.page.Clamp(page.Total); clamped != c.page {
			c.logger.Debug("page clamped", zap.Int("from", c.page.Index), zap.Int("to", clamped.Index))
			c.page = clamped
			c.issueLocked()
		}
	}
	snap := c.snapshotLocked()
	onPending := c.onPending
	c.mu.Unlock()

	c.notify(snap)
	if pending >= 0 && onPending != nil {
		onPending(pending)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:   c.version,
		RawSearch: c.raw,
		Search:    c.search,
		Sort:      c.sort,
		Page:      c.page,
		State:     c.coord.State(),
		Pending:   c.pending,
	}
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
