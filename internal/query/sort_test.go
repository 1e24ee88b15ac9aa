package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/agrilens/dashboard/internal/companies"
)

func TestSortOrders(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []string
	}{
		{key: SortFundingDesc, want: []string{"Indigo Ag", "Bowery", "FarmWise", "CropX", "Taranis", "agroSmart"}},
		{key: SortFundingAsc, want: []string{"Taranis", "agroSmart", "FarmWise", "CropX", "Bowery", "Indigo Ag"}},
		{key: SortNameAsc, want: []string{"agroSmart", "Bowery", "CropX", "FarmWise", "Indigo Ag", "Taranis"}},
		{key: SortNameDesc, want: []string{"Taranis", "Indigo Ag", "FarmWise", "CropX", "Bowery", "agroSmart"}},
		{key: SortFoundedDesc, want: []string{"FarmWise", "CropX", "Bowery", "Indigo Ag", "agroSmart", "Taranis"}},
		{key: SortFoundedAsc, want: []string{"Taranis", "Indigo Ag", "agroSmart", "CropX", "Bowery", "FarmWise"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			got := Sort(sampleRecords(), tc.key)
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Fatalf("unexpected order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortIsStableOnEqualFunding(t *testing.T) {
	got := Sort(sampleRecords(), SortFundingDesc)
	idx := map[string]int{}
	for i, rec := range got {
		idx[rec.Name] = i
	}
	assert.Less(t, idx["FarmWise"], idx["CropX"], "equal funding keeps input order")
	assert.Less(t, idx["Taranis"], idx["agroSmart"], "missing funding counts as zero and keeps input order")
}

func TestSortIsIdempotent(t *testing.T) {
	for _, key := range SortKeys {
		once := Sort(sampleRecords(), key)
		twice := Sort(once, key)
		assert.Equal(t, names(once), names(twice), "key %s", key)
	}
}

func TestSortFundingDirectionsAreReverses(t *testing.T) {
	records := generatedRecords(25)
	desc := names(Sort(records, SortFundingDesc))
	asc := names(Sort(records, SortFundingAsc))
	require.Len(t, desc, 25)
	for i := range desc {
		assert.Equal(t, asc[len(asc)-1-i], desc[i])
	}
}

func TestSortUnknownKeyKeepsInputOrder(t *testing.T) {
	records := sampleRecords()
	got := Sort(records, SortKey("revenue-desc"))
	assert.Equal(t, names(records), names(got))
	assert.False(t, SortKey("revenue-desc").Known())
}

func TestSortDoesNotModifyInput(t *testing.T) {
	records := sampleRecords()
	before := names(records)
	got := Sort(records, SortNameAsc)
	assert.Equal(t, before, names(records))
	assert.NotEqual(t, before, names(got))
}

func TestSortEmptyInput(t *testing.T) {
	got := Sort(nil, SortNameAsc)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSorterLocaleAwareNames(t *testing.T) {
	records := []companies.Record{{Name: "Zeta"}, {Name: "Émeraude"}, {Name: "alpha"}, {Name: "Ewe"}}
	got := Sorter{Locale: language.French}.Sort(records, SortNameAsc)
	assert.Equal(t, []string{"alpha", "Émeraude", "Ewe", "Zeta"}, names(got))
}
