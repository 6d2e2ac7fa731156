package store

// DefaultPageSize is used when a collection does not configure one.
const DefaultPageSize = 9

// maxPageButtons is the page count up to which every page number is shown.
const maxPageButtons = 5

// Window is one page of an ordered sequence.
type Window[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// TotalPages returns ceil(n/size); zero when n is zero.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Slice returns items[(page-1)*size : page*size], empty when out of range.
func Slice[T any](items []T, size, page int) Window[T] {
	w := Window[T]{Items: []T{}, Page: page, TotalPages: TotalPages(len(items), size)}
	if size <= 0 || page < 1 {
		return w
	}

	start := (page - 1) * size
	if start >= len(items) {
		return w
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	w.Items = items[start:end]
	return w
}

// Pager holds the current page of a view. Current is always >= 1.
type Pager struct {
	Size    int
	Current int
}

// NewPager creates a pager on page 1.
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{Size: size, Current: 1}
}

// GoToPage moves to page n when 1 <= n <= total and reports whether it moved.
// Out-of-range requests are ignored.
func (p *Pager) GoToPage(n, total int) bool {
	if n < 1 || n > total || n == p.Current {
		return false
	}
	p.Current = n
	return true
}

// Next moves one page forward if possible.
func (p *Pager) Next(total int) bool {
	return p.GoToPage(p.Current+1, total)
}

// Prev moves one page back if possible.
func (p *Pager) Prev(total int) bool {
	return p.GoToPage(p.Current-1, total)
}

// Sync resets to page 1 when the current page points past the last page of
// total pages. It reports whether the page changed.
func (p *Pager) Sync(total int) bool {
	last := total
	if last < 1 {
		last = 1
	}
	if p.Current < 1 || p.Current > last {
		p.Current = 1
		return true
	}
	return false
}

// Reset returns to page 1.
func (p *Pager) Reset() {
	p.Current = 1
}

// PageMark is one entry of the page-number control: a page or an ellipsis.
type PageMark struct {
	Page     int
	Ellipsis bool
}

// PageNumbers returns the page-number controls for total pages with current
// selected:
//   - up to five pages: all of them
//   - near the start: 1 2 3 4 … last
//   - near the end: 1 … and the last four
//   - otherwise: 1 … current-1 current current+1 … last
func PageNumbers(total, current int) []PageMark {
	var marks []PageMark
	page := func(n int) { marks = append(marks, PageMark{Page: n}) }
	ellipsis := func() { marks = append(marks, PageMark{Ellipsis: true}) }

	switch {
	case total <= maxPageButtons:
		for i := 1; i <= total; i++ {
			page(i)
		}
	case current <= 3:
		for i := 1; i <= 4; i++ {
			page(i)
		}
		ellipsis()
		page(total)
	case current >= total-2:
		page(1)
		ellipsis()
		for i := total - 3; i <= total; i++ {
			page(i)
		}
	default:
		page(1)
		ellipsis()
		for i := current - 1; i <= current+1; i++ {
			page(i)
		}
		ellipsis()
		page(total)
	}
	return marks
}
