// Package store provides the client-side view state of a catalog list view.
// It keeps a fetched collection consistent with server-confirmed mutations and
// derives the filtered view, the page window and the entrance animation from
// it. Callers drive a View with commits, filter and page changes and read back
// a consistent snapshot; stale fetches and pending reveals are dropped inside.
//
// Data flows one way:
//
//	Fetcher -> Filter -> Pager -> Animator
//
// Every input change (commit, filter, page) recomputes the chain synchronously
// so that no intermediate state is ever visible.
package store

import (
	"errors"

	"github.com/h0rv/catalog/internal/domain"
)

// ErrNoCollection indicates a view was built without a collection path.
var ErrNoCollection = errors.New("no collection set")

// View owns the fetch, filter, pagination and animation state of one list view.
// It is not safe for concurrent use; all calls happen on the UI goroutine.
type View struct {
	collection domain.Collection

	fetcher  *Fetcher
	filter   Filter
	pager    Pager
	animator *Animator

	// Derived state, rebuilt after every input change
	filtered []domain.Entity
	window   Window[domain.Entity]
}

// NewView creates the view state for c. A nil animator reveals items instantly.
func NewView(c domain.Collection, animator *Animator) (*View, error) {
	if c.Path == "" {
		return nil, ErrNoCollection
	}
	if animator == nil {
		animator = NewAnimator(nil, 0, 0, nil)
	}
	v := &View{
		collection: c,
		fetcher:    NewFetcher(c.Path),
		filter:     NewFilter(c.FilterKey),
		pager:      NewPager(c.PageSize),
		animator:   animator,
	}
	v.rebuild()
	return v, nil
}

// Collection returns the collection this view browses.
func (v *View) Collection() domain.Collection {
	return v.collection
}

// Fetcher exposes the underlying fetcher so the owner can start loads.
func (v *View) Fetcher() *Fetcher {
	return v.fetcher
}

// Refetch begins a new load of the same resource.
func (v *View) Refetch() Ticket {
	return v.fetcher.Refetch()
}

// Commit applies a load result and recomputes the derived state. Stale results
// are ignored.
func (v *View) Commit(r Result) bool {
	if !v.fetcher.Commit(r) {
		return false
	}
	v.rebuild()
	return true
}

// SetFilter changes the active filter value. A change always returns to page 1.
func (v *View) SetFilter(value string) bool {
	if !v.filter.Set(value) {
		return false
	}
	v.pager.Reset()
	v.rebuild()
	return true
}

// GoToPage moves to page n when it exists; otherwise nothing changes.
func (v *View) GoToPage(n int) bool {
	if !v.pager.GoToPage(n, v.window.TotalPages) {
		return false
	}
	v.rebuild()
	return true
}

// NextPage moves one page forward if possible.
func (v *View) NextPage() bool {
	return v.GoToPage(v.pager.Current + 1)
}

// PrevPage moves one page back if possible.
func (v *View) PrevPage() bool {
	return v.GoToPage(v.pager.Current - 1)
}

// Reveal applies one animation step.
func (v *View) Reveal(r Reveal) bool {
	return v.animator.Apply(r)
}

// Close cancels pending animation timers. Call it when the view goes away.
func (v *View) Close() {
	v.animator.Stop()
}

// State returns {data, loading, error}.
func (v *View) State() domain.FetchState {
	return v.fetcher.State()
}

// FilterValue returns the active filter value.
func (v *View) FilterValue() string {
	return v.filter.Value
}

// FilterOptions returns the selectable filter values for the loaded data.
func (v *View) FilterOptions() []string {
	return Options(v.fetcher.State().Data, v.collection.FilterKey, v.collection.FilterValues)
}

// Filtered returns the filtered collection.
func (v *View) Filtered() []domain.Entity {
	return v.filtered
}

// CurrentPage returns the 1-based current page.
func (v *View) CurrentPage() int {
	return v.pager.Current
}

// TotalPages returns the page count of the filtered collection.
func (v *View) TotalPages() int {
	return v.window.TotalPages
}

// PageItems returns the current page window.
func (v *View) PageItems() []domain.Entity {
	return v.window.Items
}

// PageNumbers returns the page-number controls for the current state.
func (v *View) PageNumbers() []PageMark {
	return PageNumbers(v.window.TotalPages, v.pager.Current)
}

// Revealed returns one reveal flag per page item.
func (v *View) Revealed() []bool {
	return v.animator.Revealed()
}

// IsRevealed reports whether page item i is revealed.
func (v *View) IsRevealed(i int) bool {
	return v.animator.IsRevealed(i)
}

// Find returns the loaded entity with id.
func (v *View) Find(id string) (domain.Entity, bool) {
	for _, e := range v.fetcher.State().Data {
		if e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// rebuild derives filtered items, the page window and the animation schedule.
func (v *View) rebuild() {
	v.filtered = v.filter.Apply(v.fetcher.State().Data)
	total := TotalPages(len(v.filtered), v.pager.Size)
	v.pager.Sync(total)
	v.window = Slice(v.filtered, v.pager.Size, v.pager.Current)
	v.animator.Show(domain.IDs(v.window.Items))
}
