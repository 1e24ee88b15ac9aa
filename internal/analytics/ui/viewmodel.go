package ui

import (
	"strings"

	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/query"
)

// OverviewCards holds the formatted headline metrics.
type OverviewCards struct {
	TotalCompanies string `json:"totalCompanies"`
	MarketSize     string `json:"marketSize"`
	GitHubRepos    string `json:"githubRepos"`
	TotalFunding   string `json:"totalFunding"`
}

// SortOption is one entry of the sort dropdown.
type SortOption struct {
	Key      query.SortKey `json:"key"`
	Label    string        `json:"label"`
	Selected bool          `json:"selected"`
}

var sortLabels = map[query.SortKey]string{
	query.SortFundingDesc: "Funding (High to Low)",
	query.SortFundingAsc:  "Funding (Low to High)",
	query.SortNameAsc:     "Name (A-Z)",
	query.SortNameDesc:    "Name (Z-A)",
	query.SortFoundedDesc: "Founded (Newest)",
	query.SortFoundedAsc:  "Founded (Oldest)",
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Overview    OverviewCards             `json:"overview"`
	Options     companies.FilterOptions   `json:"options"`
	SortOptions []SortOption              `json:"sortOptions"`
	State       query.State               `json:"state"`
	View        *ViewSink                 `json:"view"`
	Charts      []analytics.RenderedChart `json:"charts,omitempty"`
}

// Cards formats the overview scalars.
func (f Formatter) Cards(ov companies.Overview) OverviewCards {
	return OverviewCards{
		TotalCompanies: f.Count(ov.TotalCompanies),
		MarketSize:     money(ov.MarketSize),
		GitHubRepos:    f.Count(ov.GitHubRepos),
		TotalFunding:   money(ov.TotalFunding),
	}
}

// SortOptions lists the supported sort keys, marking the selected one.
func SortOptions(selected query.SortKey) []SortOption {
	opts := make([]SortOption, 0, len(query.SortKeys))
	for _, key := range query.SortKeys {
		opts = append(opts, SortOption{Key: key, Label: sortLabels[key], Selected: key == selected})
	}
	return opts
}

func money(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return Placeholder
	case strings.HasPrefix(v, "$"):
		return v
	default:
		return "$" + v
	}
}
