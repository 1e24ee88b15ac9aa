package ui

import (
	"fmt"

	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/query"
)

// NoResultsMessage is the counter text for an empty result set.
const NoResultsMessage = "No companies found"

// Counter is the results counter region.
type Counter struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

// Pagination is the page control region, including the first/prev/next/last
// buttons.
type Pagination struct {
	query.PaginationView
	FirstDisabled bool `json:"firstDisabled"`
	PrevDisabled  bool `json:"prevDisabled"`
	NextDisabled  bool `json:"nextDisabled"`
	LastDisabled  bool `json:"lastDisabled"`
}

// ViewSink collects the output of a query.Coordinator into view models. It
// implements every coordinator sink.
type ViewSink struct {
	format Formatter

	Rows       []Row      `json:"rows"`
	Empty      bool       `json:"empty"`
	Counter    Counter    `json:"counter"`
	Pagination Pagination `json:"pagination"`
	Scroll     bool       `json:"scroll"`
}

// NewViewSink builds a sink formatting with f.
func NewViewSink(f Formatter) *ViewSink {
	return &ViewSink{format: f, Rows: []Row{}}
}

// Sinks returns the sink set to hand to a coordinator.
func (v *ViewSink) Sinks() query.Sinks {
	return query.Sinks{Table: v, Counter: v, Pagination: v, Scroller: v}
}

// RenderRows implements query.TableSink.
func (v *ViewSink) RenderRows(rows []companies.Record) {
	v.Rows = v.format.Rows(rows)
	v.Empty = false
}

// RenderEmpty implements query.TableSink.
func (v *ViewSink) RenderEmpty() {
	v.Rows = []Row{}
	v.Empty = true
}

// RenderCount implements query.CounterSink.
func (v *ViewSink) RenderCount(start, end, total int) {
	v.Counter = Counter{
		Start: start,
		End:   end,
		Total: total,
		Text:  fmt.Sprintf("Showing %d-%d of %d companies", start, end, total),
	}
}

// RenderNoResults implements query.CounterSink.
func (v *ViewSink) RenderNoResults() {
	v.Counter = Counter{Text: NoResultsMessage}
}

// RenderPagination implements query.PaginationSink.
func (v *ViewSink) RenderPagination(p query.PaginationView) {
	atEnd := p.TotalPages == 0 || p.CurrentPage >= p.TotalPages
	v.Pagination = Pagination{
		PaginationView: p,
		FirstDisabled:  p.CurrentPage <= 1,
		PrevDisabled:   !p.HasPrev,
		NextDisabled:   atEnd,
		LastDisabled:   atEnd,
	}
}

// ScrollToResults implements query.Scroller.
func (v *ViewSink) ScrollToResults() {
	v.Scroll = true
}
