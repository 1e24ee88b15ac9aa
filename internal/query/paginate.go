package query

import "github.com/agrilens/dashboard/internal/companies"

const (
	// DefaultPageSize is the number of table rows per page.
	DefaultPageSize = 20
	// DefaultWindow is the number of page buttons around the current page.
	DefaultWindow = 7
)

// Paginator windows an ordered record sequence into fixed-size pages.
type Paginator struct {
	Size       int
	WindowSize int
}

// NewPaginator returns a paginator, substituting defaults for invalid
// settings. The window is forced odd and into [5, 7].
func NewPaginator(size, window int) Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	if window < 5 || window > 7 || window%2 == 0 {
		window = DefaultWindow
	}
	return Paginator{Size: size, WindowSize: window}
}

func (p Paginator) size() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

// TotalPages returns ceil(n/size), zero for an empty sequence.
func (p Paginator) TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	size := p.size()
	return (n + size - 1) / size
}

// InRange reports whether page can be displayed for n items.
func (p Paginator) InRange(page, n int) bool {
	return page >= 1 && page <= p.TotalPages(n)
}

// PageMeta describes one page of a sequence. Start and End are 1-based and
// inclusive; both are zero for an empty sequence.
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
	Start      int  `json:"start"`
	End        int  `json:"end"`
}

// Empty reports whether the sequence had no items.
func (m PageMeta) Empty() bool {
	return m.TotalItems == 0
}

// Page is a window of records plus its metadata.
type Page struct {
	Records []companies.Record
	Meta    PageMeta
}

// Paginate returns the requested page. Out-of-range requests are clamped into
// [1, TotalPages]; rejecting navigation is the coordinator's job.
func (p Paginator) Paginate(records []companies.Record, page int) Page {
	size := p.size()
	total := len(records)
	totalPages := p.TotalPages(total)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	meta := PageMeta{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if total == 0 {
		meta.Page = 1
		meta.HasPrev = false
		return Page{Records: []companies.Record{}, Meta: meta}
	}
	start := (page - 1) * size
	end := min(start+size, total)
	meta.Start = start + 1
	meta.End = end
	return Page{Records: records[start:end], Meta: meta}
}

// PageWindow is the set of page buttons to show. Pages is ordered and
// includes the first/last shortcuts when they are outside the window.
type PageWindow struct {
	Pages            []int `json:"pages"`
	LeadingEllipsis  bool  `json:"showLeadingEllipsis"`
	TrailingEllipsis bool  `json:"showTrailingEllipsis"`
}

// Window computes the page buttons for current out of total pages. No
// buttons are produced when there is at most one page.
func (p Paginator) Window(current, total int) PageWindow {
	if total <= 1 {
		return PageWindow{Pages: []int{}}
	}
	visible := p.WindowSize
	if visible <= 0 {
		visible = DefaultWindow
	}
	start := max(1, current-visible/2)
	end := min(total, start+visible-1)
	if end-start < visible-1 {
		start = max(1, end-visible+1)
	}

	var w PageWindow
	w.Pages = make([]int, 0, visible+2)
	if start > 1 {
		w.Pages = append(w.Pages, 1)
		w.LeadingEllipsis = start > 2
	}
	for i := start; i <= end; i++ {
		w.Pages = append(w.Pages, i)
	}
	if end < total {
		w.TrailingEllipsis = end < total-1
		w.Pages = append(w.Pages, total)
	}
	return w
}

// WindowItem is one rendered entry of a page window.
type WindowItem struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Items expands the window into buttons and ellipsis markers.
func (w PageWindow) Items(current int) []WindowItem {
	items := make([]WindowItem, 0, len(w.Pages)+2)
	for i, n := range w.Pages {
		if i == 1 && w.LeadingEllipsis {
			items = append(items, WindowItem{Ellipsis: true})
		}
		if i == len(w.Pages)-1 && i > 0 && w.TrailingEllipsis {
			items = append(items, WindowItem{Ellipsis: true})
		}
		items = append(items, WindowItem{Number: n, Current: n == current})
	}
	return items
}
