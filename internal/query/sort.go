package query

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/agrilens/dashboard/internal/companies"
)

// Sorter orders records by a SortKey. Name ordering follows the collation
// rules of Locale.
type Sorter struct {
	Locale language.Tag
}

// DefaultSorter collates names with English rules.
var DefaultSorter = Sorter{Locale: language.English}

// Sort orders records with DefaultSorter.
func Sort(records []companies.Record, key SortKey) []companies.Record {
	return DefaultSorter.Sort(records, key)
}

// Sort returns a new, stably ordered slice. Equal keys keep their input
// order. An unknown key returns a copy in input order.
func (s Sorter) Sort(records []companies.Record, key SortKey) []companies.Record {
	out := slices.Clone(records)
	if out == nil {
		out = []companies.Record{}
	}
	compare := s.comparator(key)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, compare)
	return out
}

func (s Sorter) comparator(key SortKey) func(a, b companies.Record) int {
	switch key {
	case SortFundingDesc:
		return func(a, b companies.Record) int { return cmp.Compare(b.FundingValue(), a.FundingValue()) }
	case SortFundingAsc:
		return func(a, b companies.Record) int { return cmp.Compare(a.FundingValue(), b.FundingValue()) }
	case SortFoundedDesc:
		return func(a, b companies.Record) int { return cmp.Compare(b.FoundedValue(), a.FoundedValue()) }
	case SortFoundedAsc:
		return func(a, b companies.Record) int { return cmp.Compare(a.FoundedValue(), b.FoundedValue()) }
	case SortNameAsc, SortNameDesc:
		// collate.Collator keeps scratch buffers, one per sort call.
		col := collate.New(s.Locale)
		if key == SortNameAsc {
			return func(a, b companies.Record) int { return col.CompareString(a.Name, b.Name) }
		}
		return func(a, b companies.Record) int { return col.CompareString(b.Name, a.Name) }
	default:
		return nil
	}
}
