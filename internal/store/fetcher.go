package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/h0rv/catalog/internal/api"
	"github.com/h0rv/catalog/internal/domain"
)

// ErrLoadFailed is the general failure surfaced to the view. The transport or
// decoding cause is wrapped alongside it.
var ErrLoadFailed = errors.New("failed to load data")

// Ticket identifies one initiated load.
type Ticket struct {
	Resource string
	Seq      uint64
}

// Result is the outcome of a load, delivered back to the owning view.
type Result struct {
	Ticket Ticket
	Data   []domain.Entity
	Err    error
}

// Fetcher keeps the fetch state of one collection resource. Only the most
// recently initiated load may commit; results of superseded loads are dropped.
//
// A Fetcher is owned by a single view and is not safe for concurrent use; the
// blocking part of a load runs elsewhere and reports back through Commit.
type Fetcher struct {
	resource string
	seq      uint64
	state    domain.FetchState
}

// NewFetcher creates a fetcher for resource. It starts in the loading state,
// the owner is expected to call Load (or Begin) right away.
func NewFetcher(resource string) *Fetcher {
	return &Fetcher{
		resource: resource,
		state:    domain.FetchState{Data: []domain.Entity{}, Loading: true},
	}
}

// Resource returns the resource path currently bound.
func (f *Fetcher) Resource() string {
	return f.resource
}

// Begin starts a new load: loading is set, the error cleared and the last good
// data kept. The returned ticket supersedes every earlier one.
func (f *Fetcher) Begin() Ticket {
	f.seq++
	f.state.Loading = true
	f.state.Err = nil
	return Ticket{Resource: f.resource, Seq: f.seq}
}

// Refetch re-runs the load against the same resource.
func (f *Fetcher) Refetch() Ticket {
	return f.Begin()
}

// SetResource binds a new resource and begins a load for it. Data of the old
// resource is dropped.
func (f *Fetcher) SetResource(resource string) Ticket {
	if resource != f.resource {
		f.resource = resource
		f.state.Data = []domain.Entity{}
	}
	return f.Begin()
}

// Latest returns the ticket of the most recently initiated load.
func (f *Fetcher) Latest() Ticket {
	return Ticket{Resource: f.resource, Seq: f.seq}
}

// IsCurrent reports whether t is the most recently initiated load.
func (f *Fetcher) IsCurrent(t Ticket) bool {
	return t.Resource == f.resource && t.Seq == f.seq
}

// Commit applies r if it belongs to the latest load and reports whether it did.
// Success replaces the data with exactly the returned list; failure keeps the
// previous data and records the error.
func (f *Fetcher) Commit(r Result) bool {
	if !f.IsCurrent(r.Ticket) {
		return false
	}

	f.state.Loading = false
	if r.Err != nil {
		log.Printf("load %s failed: %v", f.resource, r.Err)
		f.state.Err = fmt.Errorf("%w: %w", ErrLoadFailed, r.Err)
		return true
	}

	data := r.Data
	if data == nil {
		data = []domain.Entity{}
	}
	f.state.Data = data
	f.state.Err = nil
	return true
}

// Load begins a load and returns the blocking call that performs it. The call
// is meant to run inside a tea.Cmd; its Result goes back through Commit.
func (f *Fetcher) Load(ctx context.Context, lister api.Lister) func() Result {
	ticket := f.Begin()
	return func() Result {
		data, err := lister.List(ctx, ticket.Resource)
		return Result{Ticket: ticket, Data: data, Err: err}
	}
}

// State returns the current fetch state. The data slice is shared with the
// fetcher and must be treated as read-only.
func (f *Fetcher) State() domain.FetchState {
	return f.state
}
