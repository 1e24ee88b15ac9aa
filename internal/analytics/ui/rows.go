package ui

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/agrilens/dashboard/internal/companies"
)

// Placeholder is shown for absent values.
const Placeholder = "N/A"

var nonSlug = regexp.MustCompile(`[^a-z0-9]`)

// Row is one formatted company table row.
type Row struct {
	Name        string `json:"name"`
	Tech        string `json:"tech"`
	Funding     string `json:"funding"`
	Stage       string `json:"stage"`
	StageClass  string `json:"stageClass"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Founded     string `json:"founded"`
	Status      string `json:"status"`
	StatusClass string `json:"statusClass"`
}

// Formatter renders record values for display in one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a formatter for tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{printer: message.NewPrinter(tag)}
}

// Row formats rec for the company table.
func (f Formatter) Row(rec companies.Record) Row {
	return Row{
		Name:        rec.Name,
		Tech:        topTech(rec.Tech),
		Funding:     f.Funding(rec.Funding),
		Stage:       orPlaceholder(rec.Stage),
		StageClass:  StageClass(rec.Stage),
		Category:    orPlaceholder(rec.Category),
		Location:    location(rec),
		Founded:     year(rec.Founded),
		Status:      rec.StatusValue(),
		StatusClass: StatusClass(rec.Status),
	}
}

// Rows formats a page of records.
func (f Formatter) Rows(records []companies.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, f.Row(rec))
	}
	return rows
}

// Funding renders an amount in $M, or the placeholder when absent.
func (f Formatter) Funding(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return f.printer.Sprintf("$%vM", number.Decimal(*v))
}

// Count renders an integer with locale grouping.
func (f Formatter) Count(v int) string {
	return f.printer.Sprintf("%d", v)
}

// StageClass returns the css class of a stage badge, empty for no stage.
func StageClass(stage string) string {
	if stage == "" {
		return ""
	}
	return "stage-" + nonSlug.ReplaceAllString(strings.ToLower(stage), "-")
}

// StatusClass returns the css class of a status badge.
func StatusClass(status string) string {
	if strings.TrimSpace(status) == "" {
		return "status-active"
	}
	return "status-" + strings.ToLower(status)
}

func topTech(tech companies.TechList) string {
	if len(tech) == 0 {
		return Placeholder
	}
	if len(tech) > 2 {
		tech = tech[:2]
	}
	return strings.Join(tech, ", ")
}

func location(rec companies.Record) string {
	switch {
	case rec.Location != "":
		return rec.Location
	case rec.Country != "":
		return rec.Country
	default:
		return Placeholder
	}
}

func year(v *int) string {
	if v == nil || *v == 0 {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

func orPlaceholder(v string) string {
	if v == "" {
		return Placeholder
	}
	return v
}
