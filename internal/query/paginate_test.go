package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilens/dashboard/internal/companies"
)

func TestNewPaginatorDefaults(t *testing.T) {
	assert.Equal(t, Paginator{Size: 20, WindowSize: 7}, NewPaginator(0, 0))
	assert.Equal(t, Paginator{Size: 10, WindowSize: 5}, NewPaginator(10, 5))
	assert.Equal(t, 7, NewPaginator(10, 6).WindowSize)
	assert.Equal(t, 7, NewPaginator(10, 9).WindowSize)
}

func TestTotalPages(t *testing.T) {
	p := NewPaginator(20, 7)
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 3, p.TotalPages(45))
}

func TestPaginateCoversSequence(t *testing.T) {
	p := NewPaginator(20, 7)
	records := Sort(generatedRecords(45), SortNameAsc)

	var joined []companies.Record
	for page := 1; page <= p.TotalPages(len(records)); page++ {
		got := p.Paginate(records, page)
		assert.LessOrEqual(t, len(got.Records), 20)
		joined = append(joined, got.Records...)
	}
	if diff := cmp.Diff(names(records), names(joined)); diff != "" {
		t.Fatalf("pages do not cover the sequence (-want +got):\n%s", diff)
	}
}

func TestPaginateMeta(t *testing.T) {
	p := NewPaginator(20, 7)
	records := Sort(generatedRecords(45), SortNameAsc)

	first := p.Paginate(records, 1)
	assert.Equal(t, PageMeta{Page: 1, PageSize: 20, TotalItems: 45, TotalPages: 3, HasPrev: false, HasNext: true, Start: 1, End: 20}, first.Meta)
	assert.Equal(t, "Company 01", first.Records[0].Name)
	assert.Equal(t, "Company 20", first.Records[19].Name)

	last := p.Paginate(records, 3)
	assert.Equal(t, PageMeta{Page: 3, PageSize: 20, TotalItems: 45, TotalPages: 3, HasPrev: true, HasNext: false, Start: 41, End: 45}, last.Meta)
	require.Len(t, last.Records, 5)
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	p := NewPaginator(20, 7)
	records := generatedRecords(45)
	assert.Equal(t, 3, p.Paginate(records, 99).Meta.Page)
	assert.Equal(t, 1, p.Paginate(records, -4).Meta.Page)
}

func TestPaginateEmpty(t *testing.T) {
	got := NewPaginator(20, 7).Paginate(nil, 1)
	assert.NotNil(t, got.Records)
	assert.Empty(t, got.Records)
	assert.True(t, got.Meta.Empty())
	assert.Equal(t, 0, got.Meta.TotalPages)
	assert.Equal(t, 0, got.Meta.Start)
	assert.Equal(t, 0, got.Meta.End)
	assert.False(t, got.Meta.HasPrev)
	assert.False(t, got.Meta.HasNext)
}

func TestInRange(t *testing.T) {
	p := NewPaginator(20, 7)
	assert.False(t, p.InRange(0, 45))
	assert.True(t, p.InRange(1, 45))
	assert.True(t, p.InRange(3, 45))
	assert.False(t, p.InRange(4, 45))
	assert.False(t, p.InRange(1, 0))
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name    string
		window  int
		current int
		total   int
		want    PageWindow
	}{
		{name: "single page", window: 7, current: 1, total: 1, want: PageWindow{Pages: []int{}}},
		{name: "no pages", window: 7, current: 1, total: 0, want: PageWindow{Pages: []int{}}},
		{name: "fits entirely", window: 7, current: 1, total: 3, want: PageWindow{Pages: []int{1, 2, 3}}},
		{name: "start", window: 7, current: 1, total: 20, want: PageWindow{Pages: []int{1, 2, 3, 4, 5, 6, 7, 20}, TrailingEllipsis: true}},
		{name: "middle", window: 7, current: 10, total: 20, want: PageWindow{Pages: []int{1, 7, 8, 9, 10, 11, 12, 13, 20}, LeadingEllipsis: true, TrailingEllipsis: true}},
		{name: "end shifts window left", window: 7, current: 20, total: 20, want: PageWindow{Pages: []int{1, 14, 15, 16, 17, 18, 19, 20}, LeadingEllipsis: true}},
		{name: "adjacent last page needs no ellipsis", window: 7, current: 2, total: 8, want: PageWindow{Pages: []int{1, 2, 3, 4, 5, 6, 7, 8}}},
		{name: "narrow window", window: 5, current: 5, total: 9, want: PageWindow{Pages: []int{1, 3, 4, 5, 6, 7, 9}, LeadingEllipsis: true, TrailingEllipsis: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewPaginator(20, tc.window).Window(tc.current, tc.total)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected window (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWindowItems(t *testing.T) {
	w := NewPaginator(20, 7).Window(10, 20)
	items := w.Items(10)
	want := []WindowItem{
		{Number: 1},
		{Ellipsis: true},
		{Number: 7}, {Number: 8}, {Number: 9}, {Number: 10, Current: true}, {Number: 11}, {Number: 12}, {Number: 13},
		{Ellipsis: true},
		{Number: 20},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
}
