package companies

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStatus is reported for records that carry no explicit status.
const DefaultStatus = "Active"

// Record is one company entry of the dataset. Only Name is guaranteed to be set;
// absent numeric attributes are nil and absent text attributes are empty.
type Record struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
	Stage         string   `json:"stage,omitempty" yaml:"stage,omitempty"`
	Country       string   `json:"country,omitempty" yaml:"country,omitempty"`
	Location      string   `json:"location,omitempty" yaml:"location,omitempty"`
	Funding       *float64 `json:"funding,omitempty" yaml:"funding,omitempty" validate:"omitempty,gte=0"`
	Founded       *int     `json:"founded,omitempty" yaml:"founded,omitempty"`
	Employees     *int     `json:"employees,omitempty" yaml:"employees,omitempty" validate:"omitempty,gte=0"`
	Tech          TechList `json:"tech,omitempty" yaml:"tech,omitempty"`
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
	LastRoundYear *int     `json:"lastRoundYear,omitempty" yaml:"lastRoundYear,omitempty"`
}

// FundingValue returns the funding amount in $M, treating an absent value as zero.
func (r Record) FundingValue() float64 {
	if r.Funding == nil {
		return 0
	}
	return *r.Funding
}

// FoundedValue returns the founding year, treating an absent value as zero.
func (r Record) FoundedValue() int {
	if r.Founded == nil {
		return 0
	}
	return *r.Founded
}

// StatusValue returns the status, defaulting to Active.
func (r Record) StatusValue() string {
	if strings.TrimSpace(r.Status) == "" {
		return DefaultStatus
	}
	return r.Status
}

// TechList is the ordered technology list of a company. Data files carry it
// either as an array or, in older exports, as a single string.
type TechList []string

// UnmarshalJSON accepts both `"a"` and `["a","b"]`.
func (t *TechList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*t = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*t = splitTech(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("companies: tech: %w", err)
	}
	*t = list
	return nil
}

// UnmarshalYAML accepts both scalar and sequence nodes.
func (t *TechList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = splitTech(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil
	default:
		return fmt.Errorf("companies: tech: unsupported yaml node kind %d", node.Kind)
	}
}

func splitTech(value string) TechList {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return TechList{value}
}

// Overview holds the headline scalars shown on the dashboard cards.
type Overview struct {
	TotalCompanies int     `json:"totalCompanies" yaml:"totalCompanies"`
	MarketSize     string  `json:"marketSize" yaml:"marketSize"`
	GitHubRepos    int     `json:"githubRepos" yaml:"githubRepos"`
	TotalFunding   string  `json:"totalFunding" yaml:"totalFunding"`
	GrowthRate     float64 `json:"growthRate,omitempty" yaml:"growthRate,omitempty"`
}

// NamedValue is a labelled count, e.g. companies per technology category.
type NamedValue struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// CountryCount is the number of companies in one country.
type CountryCount struct {
	Country string `json:"country" yaml:"country"`
	Count   int    `json:"count" yaml:"count"`
}

// YearAmount is the funding volume for one calendar year.
type YearAmount struct {
	Year   int     `json:"year" yaml:"year"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// StageAmount is the funding volume for one funding stage.
type StageAmount struct {
	Stage  string  `json:"stage" yaml:"stage"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// QuarterAmount is the funding volume and deal count for one quarter.
type QuarterAmount struct {
	Quarter string  `json:"quarter" yaml:"quarter"`
	Amount  float64 `json:"amount" yaml:"amount"`
	Deals   int     `json:"deals" yaml:"deals"`
}

// Repo is one of the most starred open source repositories in the sector.
type Repo struct {
	Name  string `json:"name" yaml:"name"`
	Stars int    `json:"stars" yaml:"stars"`
	Forks int    `json:"forks" yaml:"forks"`
}

// CategoryCount is a patent count per technology category.
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// Technologies groups technology aggregates.
type Technologies struct {
	Categories []NamedValue `json:"categories" yaml:"categories"`
}

// Geography groups geographic aggregates.
type Geography struct {
	Distribution []CountryCount `json:"distribution" yaml:"distribution"`
}

// Funding groups funding aggregates.
type Funding struct {
	Trends    []YearAmount    `json:"trends" yaml:"trends"`
	ByStage   []StageAmount   `json:"byStage" yaml:"byStage"`
	Quarterly []QuarterAmount `json:"quarterly" yaml:"quarterly"`
}

// GitHub groups open source aggregates.
type GitHub struct {
	TopRepos []Repo `json:"topRepos" yaml:"topRepos"`
}

// Patents groups patent aggregates.
type Patents struct {
	ByCategory []CategoryCount `json:"byCategory" yaml:"byCategory"`
}

// Dataset is the immutable document the dashboard is built from.
type Dataset struct {
	Overview     Overview     `json:"overview" yaml:"overview"`
	Companies    []Record     `json:"companies" yaml:"companies"`
	Technologies Technologies `json:"technologies" yaml:"technologies"`
	Geography    Geography    `json:"geography" yaml:"geography"`
	Funding      Funding      `json:"funding" yaml:"funding"`
	GitHub       GitHub       `json:"github" yaml:"github"`
	Patents      Patents      `json:"patents" yaml:"patents"`

	// Fingerprint identifies the source document; empty for the fallback dataset.
	Fingerprint string `json:"-" yaml:"-"`
}

// Empty returns the dataset used when the data source is unavailable.
func Empty() *Dataset {
	return &Dataset{
		Companies: []Record{},
	}
}

// IsEmpty reports whether the dataset carries no companies.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Companies) == 0
}

// Records returns the company records, never nil.
func (d *Dataset) Records() []Record {
	if d == nil || d.Companies == nil {
		return []Record{}
	}
	return d.Companies
}
