package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"

	"github.com/agrilens/dashboard/internal/analytics/export"
	"github.com/agrilens/dashboard/internal/analytics/ui"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/query"
)

// Exit codes shared by the commands.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitUnavailable = 3
	ExitOutOfRange  = 4
)

// QueryOptions defines available flags for the query command.
type QueryOptions struct {
	Search   string
	Category string
	Stage    string
	Country  string
	Sort     string
	Page     int
	PageSize int
	Locale   language.Tag
	Format   string
	Stdout   io.Writer
	Stderr   io.Writer
}

// QuerySummary is the JSON output of the query command.
type QuerySummary struct {
	State      query.State   `json:"state"`
	Counter    ui.Counter    `json:"counter"`
	Pagination ui.Pagination `json:"pagination"`
	Rows       []ui.Row      `json:"rows"`
}

// DatasetLoader loads the dataset to query.
type DatasetLoader interface {
	Load(ctx context.Context) (*companies.Dataset, error)
}

// QueryCLI runs filter/sort/paginate queries against a dataset source.
type QueryCLI struct {
	loader DatasetLoader
}

// NewQueryCLI constructs the helper around loader.
func NewQueryCLI(loader DatasetLoader) *QueryCLI {
	return &QueryCLI{loader: loader}
}

// State converts the flags into a query state.
func (o QueryOptions) State() query.State {
	state := query.DefaultState()
	update := query.FilterUpdate{}
	if o.Search != "" {
		update.SearchTerm = &o.Search
	}
	if o.Category != "" {
		update.Category = &o.Category
	}
	if o.Stage != "" {
		update.Stage = &o.Stage
	}
	if o.Country != "" {
		update.Country = &o.Country
	}
	if o.Sort != "" {
		key := query.SortKey(o.Sort)
		update.SortKey = &key
	}
	return update.Apply(state)
}

// QueryCommand executes the query workflow and prints one page of results.
func (c *QueryCLI) QueryCommand(ctx context.Context, opts QueryOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "":
		format = "table"
	case "table", "json", "csv":
	default:
		_, _ = fmt.Fprintf(opts.Stderr, "query: unknown format %q (expected table, json or csv)\n", opts.Format)
		return ExitUsage
	}
	if opts.Sort != "" && !query.SortKey(opts.Sort).Known() {
		_, _ = fmt.Fprintf(opts.Stderr, "query: unknown sort %q\n", opts.Sort)
		return ExitUsage
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	locale := opts.Locale
	if locale == language.Und {
		locale = language.English
	}

	ds, err := c.loader.Load(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "query: %v\n", err)
		return ExitUnavailable
	}

	sink := ui.NewViewSink(ui.NewFormatter(locale))
	coord := query.NewCoordinator(ds, sink.Sinks(),
		query.WithPaginator(query.NewPaginator(opts.PageSize, query.DefaultWindow)),
		query.WithSorter(query.Sorter{Locale: locale}),
		query.WithState(opts.State()),
	)
	if format == "csv" {
		if err := export.WriteCompaniesCSV(opts.Stdout, coord.Results()); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "query: write csv: %v\n", err)
			return ExitUnavailable
		}
		return ExitOK
	}
	if opts.Page != 1 {
		if !coord.GoTo(opts.Page) {
			_, _ = fmt.Fprintf(opts.Stderr, "query: page %d out of range (1-%d)\n", opts.Page, max(1, coord.TotalPages()))
			return ExitOutOfRange
		}
	} else {
		coord.Refresh()
	}

	if format == "json" {
		summary := QuerySummary{State: coord.State(), Counter: sink.Counter, Pagination: sink.Pagination, Rows: sink.Rows}
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "query: encode json: %v\n", err)
			return ExitUnavailable
		}
		return ExitOK
	}
	renderTable(opts.Stdout, sink)
	return ExitOK
}

func renderTable(w io.Writer, sink *ui.ViewSink) {
	if sink.Empty {
		_, _ = fmt.Fprintln(w, ui.NoResultsMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tCATEGORY\tSTAGE\tFUNDING\tLOCATION\tFOUNDED\tSTATUS")
	for _, row := range sink.Rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Name, row.Category, row.Stage, row.Funding, row.Location, row.Founded, row.Status)
	}
	_ = tw.Flush()
	p := sink.Pagination
	_, _ = fmt.Fprintf(w, "%s (page %d of %d)\n", sink.Counter.Text, p.CurrentPage, p.TotalPages)
}
