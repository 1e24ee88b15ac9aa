package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"

	"github.com/agrilens/dashboard/cmd/dashboardctl/cli"
	"github.com/agrilens/dashboard/internal/analytics"
	"github.com/agrilens/dashboard/internal/app"
	"github.com/agrilens/dashboard/internal/companies"
	"github.com/agrilens/dashboard/internal/platform/cache"
	"github.com/agrilens/dashboard/internal/platform/db"
)

const usage = `usage: dashboardctl <command> [flags]

commands:
  query         filter, sort and page through the company dataset
  snapshot      enqueue a CSV snapshot of a query
  charts flush  invalidate every cached chart set
  jobs trigger  enqueue a job by name (charts-warmup, snapshot)
  jobs stats    print the job queue counters
  publish       validate a dataset and store it in postgres
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return cli.ExitUsage
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "load config: %v\n", err)
		return cli.ExitUsage
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	switch args[0] {
	case "query":
		return runQuery(ctx, cfg, logger, args[1:], stdout, stderr)
	case "snapshot":
		return runSnapshot(ctx, cfg, args[1:], stdout, stderr)
	case "charts":
		if len(args) < 2 || args[1] != "flush" {
			_, _ = fmt.Fprintln(stderr, "usage: dashboardctl charts flush")
			return cli.ExitUsage
		}
		client, err := cache.New(ctx, cfg.RedisAddr)
		defer client.Close()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "charts flush: %v\n", err)
			return cli.ExitUnavailable
		}
		return cli.FlushCharts(ctx, analytics.NewCache(client, cfg.ChartCacheTTL), stdout, stderr)
	case "jobs":
		return runJobs(ctx, cfg, args[1:], stdout, stderr)
	case "publish":
		return runPublish(ctx, cfg, logger, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(stdout, usage)
		return cli.ExitOK
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return cli.ExitUsage
	}
}

func queryFlags(name string, opts *cli.QueryOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.Search, "search", "q", "", "search term matched against name, technologies and location")
	fs.StringVar(&opts.Category, "category", "", "category filter (all for none)")
	fs.StringVar(&opts.Stage, "stage", "", "funding stage filter (all for none)")
	fs.StringVar(&opts.Country, "country", "", "country filter (all for none)")
	fs.StringVar(&opts.Sort, "sort", "", "sort key, e.g. funding-desc or name-asc")
	return fs
}

func runQuery(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	opts := cli.QueryOptions{Stdout: stdout, Stderr: stderr, Locale: cfg.Locale()}
	fs := queryFlags("query", &opts)
	source := fs.String("source", cfg.DataSource, "dataset file or URL")
	fs.IntVar(&opts.Page, "page", 1, "page to print")
	fs.IntVar(&opts.PageSize, "page-size", cfg.PageSize, "rows per page")
	fs.StringVarP(&opts.Format, "output", "o", "table", "output format: table, json or csv")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}
	loader, cleanup, err := newLoader(ctx, cfg, *source, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "query: %v\n", err)
		return cli.ExitUnavailable
	}
	defer cleanup()
	return cli.NewQueryCLI(loader).QueryCommand(ctx, opts)
}

func runSnapshot(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	var opts cli.QueryOptions
	fs := queryFlags("snapshot", &opts)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "snapshot: %v\n", err)
		return cli.ExitUnavailable
	}
	defer jobsCLI.Close()
	id, err := jobsCLI.Snapshot(ctx, opts.State())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "snapshot: %v\n", err)
		return cli.ExitUnavailable
	}
	_, _ = fmt.Fprintf(stdout, "snapshot enqueued: %s\n", id)
	return cli.ExitOK
}

func runJobs(ctx context.Context, cfg *app.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: dashboardctl jobs trigger <name> | jobs stats")
		return cli.ExitUsage
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "jobs: %v\n", err)
		return cli.ExitUnavailable
	}
	defer jobsCLI.Close()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(stderr, "usage: dashboardctl jobs trigger <name>")
			return cli.ExitUsage
		}
		id, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs trigger: %v\n", err)
			return cli.ExitUnavailable
		}
		_, _ = fmt.Fprintf(stdout, "enqueued %s: %s\n", args[1], id)
		return cli.ExitOK
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs stats: %v\n", err)
			return cli.ExitUnavailable
		}
		_ = json.NewEncoder(stdout).Encode(stats)
		return cli.ExitOK
	default:
		_, _ = fmt.Fprintf(stderr, "jobs: unknown subcommand %q\n", args[0])
		return cli.ExitUsage
	}
}

func runPublish(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	source := fs.String("file", "", "dataset document to publish (json or yaml)")
	dsn := fs.String("dsn", cfg.PGDSN, "postgres connection string")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return cli.ExitUsage
	}
	if *source == "" || *dsn == "" {
		_, _ = fmt.Fprintln(stderr, "publish: --file and --dsn (or PG_DSN) are required")
		return cli.ExitUsage
	}
	pool, err := db.New(ctx, *dsn, "dashboardctl")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "publish: %v\n", err)
		return cli.ExitUnavailable
	}
	defer pool.Close()
	loader := companies.NewLoader(companies.FileSource{Path: *source}, logger, cfg.DataSourceTimeout)
	return cli.PublishCommand(ctx, loader, cli.PostgresPublisher(pool), stdout, stderr)
}

func newLoader(ctx context.Context, cfg *app.Config, source string, logger *slog.Logger) (*companies.Loader, func(), error) {
	local := *cfg
	local.DataSource = source
	var pool *pgxpool.Pool
	cleanup := func() {}
	if local.SourceKind() == app.SourcePostgres {
		var err error
		pool, err = db.New(ctx, local.PGDSN, "dashboardctl")
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
	}
	return companies.NewLoader(app.NewDataSource(&local, pool), logger, local.DataSourceTimeout), cleanup, nil
}
