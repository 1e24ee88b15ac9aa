package app

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrilens/dashboard/internal/companies"
)

// NewDataSource builds the companies.Source named by DATA_SOURCE. The pool
// is only used for the postgres kind.
func NewDataSource(cfg *Config, pool *pgxpool.Pool) companies.Source {
	switch cfg.SourceKind() {
	case SourcePostgres:
		return companies.PostgresSource{Pool: pool}
	case SourceHTTP:
		return companies.HTTPSource{URL: cfg.DataSource, Client: &http.Client{Timeout: cfg.DataSourceTimeout}}
	default:
		return companies.FileSource{Path: cfg.DataSource}
	}
}
