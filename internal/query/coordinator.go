package query

import "github.com/agrilens/dashboard/internal/companies"

// TableSink renders one page of company rows.
type TableSink interface {
	RenderRows(rows []companies.Record)
	RenderEmpty()
}

// CounterSink renders the "showing X-Y of Z" message.
type CounterSink interface {
	RenderCount(start, end, total int)
	RenderNoResults()
}

// PaginationView is the state of the page controls.
type PaginationView struct {
	CurrentPage int          `json:"currentPage"`
	TotalPages  int          `json:"totalPages"`
	HasPrev     bool         `json:"hasPrev"`
	HasNext     bool         `json:"hasNext"`
	Window      PageWindow   `json:"window"`
	Items       []WindowItem `json:"items"`
}

// PaginationSink renders the page controls.
type PaginationSink interface {
	RenderPagination(view PaginationView)
}

// Scroller brings the results region into view after a page change.
type Scroller interface {
	ScrollToResults()
}

// Sinks groups the presentation collaborators. Nil members are skipped.
type Sinks struct {
	Table      TableSink
	Counter    CounterSink
	Pagination PaginationSink
	Scroller   Scroller
}

// Coordinator owns the query state of one dashboard instance and keeps the
// sinks consistent with it. It is not safe for concurrent use.
type Coordinator struct {
	records []companies.Record
	state   State
	pager   Paginator
	sorter  Sorter
	sinks   Sinks

	ordered []companies.Record
	page    Page
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithPaginator overrides the page size and window.
func WithPaginator(p Paginator) Option {
	return func(c *Coordinator) { c.pager = p }
}

// WithSorter overrides the name collation locale.
func WithSorter(s Sorter) Option {
	return func(c *Coordinator) { c.sorter = s }
}

// WithState restores a previously saved state. An out-of-range page is
// clamped to the nearest valid page.
func WithState(s State) Option {
	return func(c *Coordinator) { c.state = s.Normalize() }
}

// NewCoordinator builds a coordinator over the dataset. The derived view is
// computed immediately but no sink is notified until Refresh or a mutation.
func NewCoordinator(ds *companies.Dataset, sinks Sinks, opts ...Option) *Coordinator {
	c := &Coordinator{
		records: ds.Records(),
		state:   DefaultState(),
		pager:   NewPaginator(DefaultPageSize, DefaultWindow),
		sorter:  DefaultSorter,
		sinks:   sinks,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute()
	if c.state.CurrentPage > max(1, c.TotalPages()) {
		c.state.CurrentPage = max(1, c.TotalPages())
	}
	c.page = c.pager.Paginate(c.ordered, c.state.CurrentPage)
	return c
}

// SetSinks replaces the presentation collaborators.
func (c *Coordinator) SetSinks(sinks Sinks) {
	c.sinks = sinks
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	return c.state
}

// Page returns the current page.
func (c *Coordinator) Page() Page {
	return c.page
}

// Results returns the full filtered and sorted sequence.
func (c *Coordinator) Results() []companies.Record {
	return c.ordered
}

// TotalPages returns the page count of the current result set.
func (c *Coordinator) TotalPages() int {
	return c.pager.TotalPages(len(c.ordered))
}

// Pagination returns the page control state for the current page.
func (c *Coordinator) Pagination() PaginationView {
	meta := c.page.Meta
	window := c.pager.Window(c.state.CurrentPage, meta.TotalPages)
	return PaginationView{
		CurrentPage: c.state.CurrentPage,
		TotalPages:  meta.TotalPages,
		HasPrev:     meta.HasPrev,
		HasNext:     meta.HasNext,
		Window:      window,
		Items:       window.Items(c.state.CurrentPage),
	}
}

// UpdateFilters merges the update, returns to page 1, recomputes the view
// and notifies every sink.
func (c *Coordinator) UpdateFilters(u FilterUpdate) {
	c.state = u.Apply(c.state)
	c.state.CurrentPage = 1
	c.recompute()
	c.repage()
	c.render()
}

// ResetFilters restores the default state and renders it.
func (c *Coordinator) ResetFilters() {
	c.state = DefaultState()
	c.recompute()
	c.repage()
	c.render()
}

// GoTo moves to an absolute page. It returns false, leaving the state and
// the sinks untouched, when page is outside [1, TotalPages].
func (c *Coordinator) GoTo(page int) bool {
	if !c.pager.InRange(page, len(c.ordered)) {
		return false
	}
	c.state.CurrentPage = page
	c.repage()
	c.render()
	if c.sinks.Scroller != nil {
		c.sinks.Scroller.ScrollToResults()
	}
	return true
}

// Step moves relative to the current page.
func (c *Coordinator) Step(delta int) bool {
	return c.GoTo(c.state.CurrentPage + delta)
}

// First moves to page 1.
func (c *Coordinator) First() bool {
	return c.GoTo(1)
}

// Last moves to the final page.
func (c *Coordinator) Last() bool {
	return c.GoTo(c.TotalPages())
}

// Refresh pushes the current view to the sinks without changing state.
func (c *Coordinator) Refresh() {
	c.render()
}

func (c *Coordinator) recompute() {
	filtered := Filter(c.records, c.state.Filters)
	c.ordered = c.sorter.Sort(filtered, c.state.SortKey)
}

func (c *Coordinator) repage() {
	c.page = c.pager.Paginate(c.ordered, c.state.CurrentPage)
}

func (c *Coordinator) render() {
	meta := c.page.Meta
	if t := c.sinks.Table; t != nil {
		if meta.Empty() {
			t.RenderEmpty()
		} else {
			t.RenderRows(c.page.Records)
		}
	}
	if ct := c.sinks.Counter; ct != nil {
		if meta.Empty() {
			ct.RenderNoResults()
		} else {
			ct.RenderCount(meta.Start, meta.End, meta.TotalItems)
		}
	}
	if p := c.sinks.Pagination; p != nil {
		p.RenderPagination(c.Pagination())
	}
}
