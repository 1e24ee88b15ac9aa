package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrilens/dashboard/internal/companies"
)

// PublishFunc stores a dataset revision and returns its id.
type PublishFunc func(ctx context.Context, ds *companies.Dataset) (int64, error)

// PostgresPublisher publishes into the dashboard_datasets table of pool.
func PostgresPublisher(pool *pgxpool.Pool) PublishFunc {
	return func(ctx context.Context, ds *companies.Dataset) (int64, error) {
		return companies.Publish(ctx, pool, ds)
	}
}

// PublishCommand validates the dataset from loader and publishes it.
func PublishCommand(ctx context.Context, loader DatasetLoader, publish PublishFunc, stdout, stderr io.Writer) int {
	ds, err := loader.Load(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "publish: %v\n", err)
		return ExitUnavailable
	}
	if ds.IsEmpty() {
		_, _ = fmt.Fprintln(stderr, "publish: refusing to publish a dataset without companies")
		return ExitUsage
	}
	id, err := publish(ctx, ds)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "publish: %v\n", err)
		return ExitUnavailable
	}
	_, _ = fmt.Fprintf(stdout, "published revision %d (%d companies, fingerprint %s)\n", id, len(ds.Companies), ds.Fingerprint)
	return ExitOK
}
