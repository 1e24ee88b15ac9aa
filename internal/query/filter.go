package query

import (
	"strings"

	"github.com/agrilens/dashboard/internal/companies"
)

func active(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != All
}

// Matches reports whether rec satisfies every active predicate of f.
func Matches(rec companies.Record, f Filters) bool {
	return matches(rec, f, normalizeTerm(f.SearchTerm))
}

// normalizeTerm lowercases the search term. Whitespace is significant: only
// the empty string disables the search predicate.
func normalizeTerm(term string) string {
	return strings.ToLower(term)
}

func matches(rec companies.Record, f Filters, term string) bool {
	if active(f.Category) && rec.Category != f.Category {
		return false
	}
	if active(f.Stage) && rec.Stage != f.Stage {
		return false
	}
	if active(f.Country) && rec.Country != f.Country {
		return false
	}
	return matchesSearch(rec, term)
}

// matchesSearch expects term already lowercased. Absent fields are skipped.
func matchesSearch(rec companies.Record, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Name), term) {
		return true
	}
	for _, tech := range rec.Tech {
		if strings.Contains(strings.ToLower(tech), term) {
			return true
		}
	}
	if rec.Location != "" && strings.Contains(strings.ToLower(rec.Location), term) {
		return true
	}
	if rec.Country != "" && strings.Contains(strings.ToLower(rec.Country), term) {
		return true
	}
	return false
}

// Filter returns the records matching f in their original order. The input
// slice is not modified.
func Filter(records []companies.Record, f Filters) []companies.Record {
	term := normalizeTerm(f.SearchTerm)
	out := make([]companies.Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, f, term) {
			out = append(out, rec)
		}
	}
	return out
}
