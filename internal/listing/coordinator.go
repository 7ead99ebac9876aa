package listing

import "github.com/imgajeed76/pinvite/internal/invite"

// Request identifies one issued fetch.
type Request struct {
	Seq    uint64
	Params QueryParams
}

// Coordinator is the fetch lifecycle state machine:
//
//	Idle → Loading → Success | Error
//	Success | Error → Loading   (new params, reload or retry)
//
// Every Begin supersedes the requests before it; Resolve only applies the
// result of the latest one. Coordinator does no locking or I/O of its own;
// the Controller serializes calls and runs the fetches.
type Coordinator struct {
	seq    uint64
	latest QueryParams
	issued bool
	state  FetchState
}

// NewCoordinator returns a coordinator in the Idle state.
func NewCoordinator() *Coordinator {
	return &Coordinator{state: idleState()}
}

// Begin issues a fetch for q and moves to Loading.
func (c *Coordinator) Begin(q QueryParams) Request {
	c.seq++
	c.latest = q
	c.issued = true
	c.state = loadingState(q)
	return Request{Seq: c.seq, Params: q}
}

// Retry re-issues the last params. It reports false before anything has
// been issued.
func (c *Coordinator) Retry() (Request, bool) {
	if !c.issued {
		return Request{}, false
	}
	return c.Begin(c.latest), true
}

// Resolve applies the outcome of req. Results of superseded requests are
// dropped and Resolve reports false.
func (c *Coordinator) Resolve(req Request, page invite.Page, err error) bool {
	if !c.Current(req) {
		return false
	}
	if err != nil {
		c.state = errorState(req.Params, err)
	} else {
		c.state = successState(req.Params, page)
	}
	return true
}

// Current reports whether req is the latest issued request and still
// awaiting its result.
func (c *Coordinator) Current(req Request) bool {
	return c.issued && req.Seq == c.seq && req.Params == c.latest && c.state.IsLoading()
}

// Latest returns the params of the most recent request.
func (c *Coordinator) Latest() (QueryParams, bool) {
	return c.latest, c.issued
}

// State returns the current lifecycle state.
func (c *Coordinator) State() FetchState {
	return c.state
}
