package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrString(v string) *string { return &v }

func ptrSortKey(v SortKey) *SortKey { return &v }

func newNameSorted(t *testing.T, n int) (*Coordinator, *recordingSinks) {
	t.Helper()
	rec := &recordingSinks{}
	c := NewCoordinator(datasetOf(generatedRecords(n)), rec.sinks())
	c.UpdateFilters(FilterUpdate{SortKey: ptrSortKey(SortNameAsc)})
	return c, rec
}

func TestCoordinatorFirstPageByName(t *testing.T) {
	c, rec := newNameSorted(t, 45)

	require.Len(t, rec.rows, 1)
	want := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		want = append(want, fmt.Sprintf("Company %02d", i))
	}
	assert.Equal(t, want, rec.rows[0])
	assert.Equal(t, [][3]int{{1, 20, 45}}, rec.counts)

	require.Len(t, rec.pagination, 1)
	view := rec.pagination[0]
	assert.Equal(t, []int{1, 2, 3}, view.Window.Pages)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Equal(t, 3, view.TotalPages)
	assert.True(t, view.HasNext)
	assert.False(t, view.HasPrev)
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.Zero(t, rec.scrolls)
}

func TestCoordinatorNoResults(t *testing.T) {
	rec := &recordingSinks{}
	c := NewCoordinator(datasetOf(generatedRecords(45)), rec.sinks())
	c.UpdateFilters(FilterUpdate{Category: ptrString("Seed"), Stage: ptrString("Series A")})

	assert.Equal(t, 1, rec.empties)
	assert.Empty(t, rec.rows)
	assert.Equal(t, 1, rec.noResults)
	assert.Empty(t, rec.counts)
	require.Len(t, rec.pagination, 1)
	assert.Equal(t, 0, rec.pagination[0].TotalPages)
	assert.False(t, rec.pagination[0].HasPrev)
	assert.False(t, rec.pagination[0].HasNext)
	assert.Empty(t, rec.pagination[0].Window.Pages)
	assert.Equal(t, 0, c.TotalPages())

	before := rec.calls()
	assert.False(t, c.GoTo(1))
	assert.False(t, c.Step(1))
	assert.Equal(t, before, rec.calls())
}

func TestCoordinatorRejectsStepPastLastPage(t *testing.T) {
	c, rec := newNameSorted(t, 45)
	require.True(t, c.Last())
	require.Equal(t, 3, c.State().CurrentPage)

	state := c.State()
	before := rec.calls()
	assert.False(t, c.Step(1))
	assert.Equal(t, state, c.State())
	assert.Equal(t, before, rec.calls(), "rejected navigation must not touch the sinks")
}

func TestCoordinatorRejectsStepBeforeFirstPage(t *testing.T) {
	c, rec := newNameSorted(t, 45)
	before := rec.calls()
	assert.False(t, c.Step(-1))
	assert.False(t, c.GoTo(0))
	assert.False(t, c.GoTo(4))
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.Equal(t, before, rec.calls())
}

func TestCoordinatorNavigationRendersAndScrolls(t *testing.T) {
	c, rec := newNameSorted(t, 45)
	require.True(t, c.Step(1))

	assert.Equal(t, 2, c.State().CurrentPage)
	assert.Equal(t, [3]int{21, 40, 45}, rec.counts[len(rec.counts)-1])
	assert.Equal(t, "Company 21", rec.rows[len(rec.rows)-1][0])
	assert.Equal(t, 1, rec.scrolls)

	view := rec.pagination[len(rec.pagination)-1]
	assert.True(t, view.HasPrev)
	assert.True(t, view.HasNext)

	require.True(t, c.Last())
	assert.Equal(t, [3]int{41, 45, 45}, rec.counts[len(rec.counts)-1])
	require.True(t, c.First())
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.Equal(t, 3, rec.scrolls)
}

func TestCoordinatorFilterUpdateResetsPage(t *testing.T) {
	c, _ := newNameSorted(t, 45)
	require.True(t, c.GoTo(3))

	c.UpdateFilters(FilterUpdate{SearchTerm: ptrString("company")})
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.Equal(t, "company", c.State().SearchTerm)
	assert.Equal(t, SortNameAsc, c.State().SortKey, "sort key survives unrelated updates")
}

func TestCoordinatorResultsStayConsistent(t *testing.T) {
	c, _ := newNameSorted(t, 45)
	c.UpdateFilters(FilterUpdate{Country: ptrString("India"), SortKey: ptrSortKey(SortFundingDesc)})

	results := c.Results()
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "India", r.Country)
	}
	assert.Equal(t, names(Sort(Filter(generatedRecords(45), c.State().Filters), SortFundingDesc)), names(results))
	assert.Equal(t, (len(results)+19)/20, c.TotalPages())
}

func TestCoordinatorReset(t *testing.T) {
	rec := &recordingSinks{}
	c := NewCoordinator(datasetOf(generatedRecords(45)), rec.sinks())
	c.UpdateFilters(FilterUpdate{
		SearchTerm: ptrString("company 1"),
		Category:   ptrString("Robotics"),
		SortKey:    ptrSortKey(SortNameDesc),
	})
	c.ResetFilters()

	assert.Equal(t, DefaultState(), c.State())
	assert.Len(t, c.Results(), 45)
	assert.Equal(t, "Company 45", c.Page().Records[0].Name, "default ordering is funding descending")
	assert.Equal(t, [3]int{1, 20, 45}, rec.counts[len(rec.counts)-1])
}

func TestCoordinatorUnknownSortKeyKeepsFilteredOrder(t *testing.T) {
	rec := &recordingSinks{}
	c := NewCoordinator(datasetOf(sampleRecords()), rec.sinks())
	c.UpdateFilters(FilterUpdate{SortKey: ptrSortKey("employees-desc")})

	assert.Equal(t, SortKey("employees-desc"), c.State().SortKey)
	assert.Equal(t, names(sampleRecords()), names(c.Results()))
}

func TestCoordinatorRestoresState(t *testing.T) {
	saved := DefaultState()
	saved.SortKey = SortNameAsc
	saved.CurrentPage = 2

	c := NewCoordinator(datasetOf(generatedRecords(45)), Sinks{}, WithState(saved))
	assert.Equal(t, 2, c.State().CurrentPage)
	assert.Equal(t, "Company 21", c.Page().Records[0].Name)

	saved.CurrentPage = 9
	c = NewCoordinator(datasetOf(generatedRecords(45)), Sinks{}, WithState(saved))
	assert.Equal(t, 3, c.State().CurrentPage)
}

func TestCoordinatorConstructionDoesNotRender(t *testing.T) {
	rec := &recordingSinks{}
	c := NewCoordinator(datasetOf(generatedRecords(5)), rec.sinks())
	assert.Zero(t, rec.calls())

	c.Refresh()
	assert.Equal(t, 3, rec.calls())
	assert.Zero(t, rec.scrolls)
}

func TestCoordinatorEmptyDataset(t *testing.T) {
	rec := &recordingSinks{}
	c := NewCoordinator(nil, rec.sinks())
	c.Refresh()

	assert.Equal(t, 1, rec.empties)
	assert.Equal(t, 1, rec.noResults)
	assert.Equal(t, 1, c.State().CurrentPage)
	assert.False(t, c.Last())
}

func TestCoordinatorWithoutSinks(t *testing.T) {
	c := NewCoordinator(datasetOf(generatedRecords(45)), Sinks{}, WithPaginator(NewPaginator(10, 5)))
	assert.Equal(t, 5, c.TotalPages())
	assert.True(t, c.GoTo(5))
	c.UpdateFilters(FilterUpdate{SearchTerm: ptrString("company 4")})
	assert.Equal(t, 1, c.TotalPages())
}

func TestCoordinatorSetSinks(t *testing.T) {
	c := NewCoordinator(datasetOf(generatedRecords(45)), Sinks{})
	rec := &recordingSinks{}
	c.SetSinks(rec.sinks())
	c.Refresh()
	assert.Len(t, rec.rows, 1)
}
