package listing

import (
	"fmt"

	"github.com/imgajeed76/pinvite/internal/invite"
)

// Status tags which FetchState variant holds.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// FetchState is the request lifecycle: Idle, Loading, Success(records,
// total) or Error(cause). Only the fields of the active variant are set.
type FetchState struct {
	status  Status
	params  QueryParams
	records []invite.Record
	total   int
	err     *FetchFailure
}

func idleState() FetchState {
	return FetchState{status: StatusIdle}
}

func loadingState(q QueryParams) FetchState {
	return FetchState{status: StatusLoading, params: q}
}

func successState(q QueryParams, page invite.Page) FetchState {
	records := page.Records
	if records == nil {
		records = []invite.Record{}
	}
	return FetchState{status: StatusSuccess, params: q, records: records, total: page.Total}
}

func errorState(q QueryParams, cause error) FetchState {
	return FetchState{status: StatusError, params: q, err: &FetchFailure{Params: q, Cause: cause}}
}

// Status returns the active variant.
func (s FetchState) Status() Status { return s.status }

// Params returns the params of the fetch this state belongs to. Idle has none.
func (s FetchState) Params() QueryParams { return s.params }

// Records returns the fetched page. Nil unless the state is Success.
func (s FetchState) Records() []invite.Record { return s.records }

// Total returns the total match count. Zero unless the state is Success.
func (s FetchState) Total() int { return s.total }

// Err returns the failure. Nil unless the state is Error.
func (s FetchState) Err() *FetchFailure { return s.err }

func (s FetchState) IsIdle() bool    { return s.status == StatusIdle }
func (s FetchState) IsLoading() bool { return s.status == StatusLoading }
func (s FetchState) IsSuccess() bool { return s.status == StatusSuccess }
func (s FetchState) IsError() bool   { return s.status == StatusError }

// IsEmpty reports a successful fetch that matched nothing.
func (s FetchState) IsEmpty() bool {
	return s.status == StatusSuccess && len(s.records) == 0
}

// FetchFailure wraps the cause of a failed fetch.
type FetchFailure struct {
	Params QueryParams
	Cause  error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("fetch invites (%s): %v", e.Params, e.Cause)
}

func (e *FetchFailure) Unwrap() error {
	return e.Cause
}
