package analytics

import (
	"math"

	"github.com/agrilens/dashboard/internal/companies"
)

// ChartKind selects the renderer used for a chart.
type ChartKind string

const (
	KindDoughnut ChartKind = "doughnut"
	KindBar      ChartKind = "bar"
	KindLine     ChartKind = "line"
	KindBubble   ChartKind = "bubble"
)

// Chart identifiers, stable across releases because clients key on them.
const (
	ChartTechCategories   = "techCategory"
	ChartGeoDistribution  = "geoDistribution"
	ChartFundingBubble    = "fundingBubble"
	ChartFundingTrends    = "fundingTrends"
	ChartFundingByStage   = "fundingStage"
	ChartQuarterlyFunding = "quarterlyFunding"
	ChartGitHubRepos      = "githubRepos"
	ChartPatentCategories = "patentCategory"
)

const (
	// GeoTopN caps the countries shown in the geographic distribution.
	GeoTopN = 10
	// BubbleSample is the number of leading companies plotted on the bubble chart.
	BubbleSample = 30
	// BubbleDefaultYear is the x position of companies without a round or founding year.
	BubbleDefaultYear = 2020
)

// Series is one data series of a chart.
type Series struct {
	Label     string    `json:"label"`
	Values    []float64 `json:"values"`
	Color     string    `json:"color,omitempty"`
	Colors    []string  `json:"colors,omitempty"`
	Secondary bool      `json:"secondary,omitempty"`
}

// BubblePoint is one company on the funding bubble chart.
type BubblePoint struct {
	Company   string  `json:"company"`
	Stage     string  `json:"stage"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	R         float64 `json:"r"`
	Employees *int    `json:"employees,omitempty"`
}

// Chart is the renderer-independent description of one dashboard chart.
type Chart struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Kind        ChartKind     `json:"kind"`
	Labels      []string      `json:"labels"`
	Series      []Series      `json:"series"`
	Bubbles     []BubblePoint `json:"bubbles,omitempty"`
}

// Empty reports whether the chart has nothing to plot.
func (c Chart) Empty() bool {
	if c.Kind == KindBubble {
		return len(c.Bubbles) == 0
	}
	return len(c.Labels) == 0
}

// StageColor assigns a fixed colour to a funding stage.
type StageColor struct {
	Stage string
	Color string
}

// StageColors lists the stages plotted on the bubble chart in legend order.
var StageColors = []StageColor{
	{"Seed", "#7edfa1"},
	{"Series A", "#6bc990"},
	{"Series B", "#5ab57f"},
	{"Series C", "#4a9f6e"},
	{"Series D", "#3a8a5d"},
	{"Series E", "#2c5f7c"},
	{"Series F", "#1e4a5f"},
	{"Series G", "#0f3442"},
	{"Public", "#f39c12"},
	{"Acquired", "#e74c3c"},
	{"Corporate", "#3498db"},
}

var (
	categoryPalette = []string{"#2c5f7c", "#3a8a5d", "#4a9f6e", "#5ab57f", "#6bc990", "#7edfa1", "#8fe5b2", "#a0efc3"}
	stagePalette    = []string{"#7edfa1", "#6bc990", "#5ab57f", "#4a9f6e", "#3a8a5d", "#2c5f7c", "#1e4a5f", "#0f3442"}
)

// BuildCharts derives every dashboard chart from the full dataset. Query
// state never influences the charts.
func BuildCharts(ds *companies.Dataset) []Chart {
	if ds == nil {
		ds = companies.Empty()
	}
	return []Chart{
		TechnologyCategories(ds),
		GeographicDistribution(ds),
		FundingBubble(ds),
		FundingTrends(ds),
		FundingByStage(ds),
		QuarterlyFunding(ds),
		GitHubRepos(ds),
		PatentCategories(ds),
	}
}

// TechnologyCategories counts companies per technology category.
func TechnologyCategories(ds *companies.Dataset) Chart {
	items := ds.Technologies.Categories
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Name)
		values = append(values, item.Value)
	}
	return Chart{
		ID:          ChartTechCategories,
		Title:       "Technology Categories",
		Description: "Companies per technology category",
		Kind:        KindDoughnut,
		Labels:      labels,
		Series:      []Series{{Label: "Companies", Values: values, Colors: categoryPalette}},
	}
}

// GeographicDistribution shows the first GeoTopN countries of the distribution.
func GeographicDistribution(ds *companies.Dataset) Chart {
	items := ds.Geography.Distribution
	if len(items) > GeoTopN {
		items = items[:GeoTopN]
	}
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Country)
		values = append(values, float64(item.Count))
	}
	return Chart{
		ID:          ChartGeoDistribution,
		Title:       "Geographic Distribution",
		Description: "Number of companies per country",
		Kind:        KindBar,
		Labels:      labels,
		Series:      []Series{{Label: "Number of Companies", Values: values, Color: "#3a8a5d"}},
	}
}

// FundingBubble plots the first BubbleSample companies by year and funding,
// grouped by stage. Companies outside the known stages are not plotted.
func FundingBubble(ds *companies.Dataset) Chart {
	records := ds.Records()
	if len(records) > BubbleSample {
		records = records[:BubbleSample]
	}
	var points []BubblePoint
	labels := make([]string, 0, len(StageColors))
	for _, sc := range StageColors {
		found := false
		for _, rec := range records {
			if rec.Stage != sc.Stage {
				continue
			}
			found = true
			points = append(points, bubbleFor(rec))
		}
		if found {
			labels = append(labels, sc.Stage)
		}
	}
	return Chart{
		ID:          ChartFundingBubble,
		Title:       "Funding Landscape",
		Description: "Funding by year of last round, sized by funding",
		Kind:        KindBubble,
		Labels:      labels,
		Bubbles:     points,
	}
}

func bubbleFor(rec companies.Record) BubblePoint {
	year := BubbleDefaultYear
	switch {
	case rec.LastRoundYear != nil && *rec.LastRoundYear != 0:
		year = *rec.LastRoundYear
	case rec.Founded != nil && *rec.Founded != 0:
		year = *rec.Founded
	}
	funding := rec.FundingValue()
	return BubblePoint{
		Company:   rec.Name,
		Stage:     rec.Stage,
		X:         float64(year),
		Y:         funding,
		R:         math.Sqrt(math.Max(funding, 0)*10) / 3,
		Employees: rec.Employees,
	}
}

// FundingTrends is the yearly funding volume.
func FundingTrends(ds *companies.Dataset) Chart {
	items := ds.Funding.Trends
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, itoa(item.Year))
		values = append(values, item.Amount)
	}
	return Chart{
		ID:          ChartFundingTrends,
		Title:       "Funding Trends",
		Description: "Total funding per year in $M",
		Kind:        KindLine,
		Labels:      labels,
		Series:      []Series{{Label: "Total Funding ($M)", Values: values, Color: "#2c5f7c"}},
	}
}

// FundingByStage is the funding volume per stage.
func FundingByStage(ds *companies.Dataset) Chart {
	items := ds.Funding.ByStage
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Stage)
		values = append(values, item.Amount)
	}
	return Chart{
		ID:          ChartFundingByStage,
		Title:       "Funding by Stage",
		Description: "Total funding per stage in $M",
		Kind:        KindBar,
		Labels:      labels,
		Series:      []Series{{Label: "Total Funding ($M)", Values: values, Colors: stagePalette}},
	}
}

// QuarterlyFunding pairs the quarterly amount with the deal count on a
// secondary axis.
func QuarterlyFunding(ds *companies.Dataset) Chart {
	items := ds.Funding.Quarterly
	labels := make([]string, 0, len(items))
	amounts := make([]float64, 0, len(items))
	deals := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Quarter)
		amounts = append(amounts, item.Amount)
		deals = append(deals, float64(item.Deals))
	}
	return Chart{
		ID:          ChartQuarterlyFunding,
		Title:       "Quarterly Funding",
		Description: "Funding amount and number of deals per quarter",
		Kind:        KindLine,
		Labels:      labels,
		Series: []Series{
			{Label: "Funding Amount ($M)", Values: amounts, Color: "#2c5f7c"},
			{Label: "Number of Deals", Values: deals, Color: "#3a8a5d", Secondary: true},
		},
	}
}

// GitHubRepos compares stars and forks of the top repositories.
func GitHubRepos(ds *companies.Dataset) Chart {
	items := ds.GitHub.TopRepos
	labels := make([]string, 0, len(items))
	stars := make([]float64, 0, len(items))
	forks := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Name)
		stars = append(stars, float64(item.Stars))
		forks = append(forks, float64(item.Forks))
	}
	return Chart{
		ID:          ChartGitHubRepos,
		Title:       "Top Open Source Repositories",
		Description: "Stars and forks per repository",
		Kind:        KindBar,
		Labels:      labels,
		Series: []Series{
			{Label: "Stars", Values: stars, Color: "#2c5f7c"},
			{Label: "Forks", Values: forks, Color: "#3a8a5d"},
		},
	}
}

// PatentCategories counts patents per technology category.
func PatentCategories(ds *companies.Dataset) Chart {
	items := ds.Patents.ByCategory
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Category)
		values = append(values, float64(item.Count))
	}
	return Chart{
		ID:          ChartPatentCategories,
		Title:       "Patents by Category",
		Description: "Number of patents per technology category",
		Kind:        KindBar,
		Labels:      labels,
		Series:      []Series{{Label: "Number of Patents", Values: values, Color: "#3a8a5d"}},
	}
}
