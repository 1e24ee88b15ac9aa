package query

import "strings"

// All is the filter value that disables a category, stage or country predicate.
const All = "all"

// SortKey selects the ordering of the company table.
type SortKey string

const (
	SortFundingDesc SortKey = "funding-desc"
	SortFundingAsc  SortKey = "funding-asc"
	SortNameAsc     SortKey = "name-asc"
	SortNameDesc    SortKey = "name-desc"
	SortFoundedDesc SortKey = "founded-desc"
	SortFoundedAsc  SortKey = "founded-asc"
)

// DefaultSort is applied on start and after a reset.
const DefaultSort = SortFundingDesc

// SortKeys lists the supported keys in the order the dashboard offers them.
var SortKeys = []SortKey{SortFundingDesc, SortFundingAsc, SortNameAsc, SortNameDesc, SortFoundedDesc, SortFoundedAsc}

// Known reports whether k is one of the supported keys.
func (k SortKey) Known() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Filters are the predicate inputs of the filter engine.
type Filters struct {
	SearchTerm string `json:"searchTerm"`
	Category   string `json:"category"`
	Stage      string `json:"stage"`
	Country    string `json:"country"`
}

// State is the complete user selection of one dashboard instance.
type State struct {
	Filters
	SortKey     SortKey `json:"sortKey"`
	CurrentPage int     `json:"currentPage"`
}

// DefaultState returns the state a fresh dashboard starts with.
func DefaultState() State {
	return State{
		Filters:     Filters{Category: All, Stage: All, Country: All},
		SortKey:     DefaultSort,
		CurrentPage: 1,
	}
}

// Normalize fills unset fields with their defaults. It never rejects a value:
// unknown sort keys are kept and sort as a no-op.
func (s State) Normalize() State {
	if strings.TrimSpace(s.Category) == "" {
		s.Category = All
	}
	if strings.TrimSpace(s.Stage) == "" {
		s.Stage = All
	}
	if strings.TrimSpace(s.Country) == "" {
		s.Country = All
	}
	if s.SortKey == "" {
		s.SortKey = DefaultSort
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	return s
}

// FilterUpdate is a partial change to the filter and sort selection. Nil
// fields leave the current value untouched.
type FilterUpdate struct {
	SearchTerm *string  `json:"searchTerm,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Stage      *string  `json:"stage,omitempty"`
	Country    *string  `json:"country,omitempty"`
	SortKey    *SortKey `json:"sortKey,omitempty"`
}

// IsZero reports whether the update changes nothing.
func (u FilterUpdate) IsZero() bool {
	return u.SearchTerm == nil && u.Category == nil && u.Stage == nil && u.Country == nil && u.SortKey == nil
}

// Apply merges the update into s. The page number is left to the caller.
func (u FilterUpdate) Apply(s State) State {
	if u.SearchTerm != nil {
		s.SearchTerm = *u.SearchTerm
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if u.Stage != nil {
		s.Stage = *u.Stage
	}
	if u.Country != nil {
		s.Country = *u.Country
	}
	if u.SortKey != nil {
		s.SortKey = *u.SortKey
	}
	return s.Normalize()
}
