package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads the most recently published dataset document from the
// dashboard_datasets table. Documents are written by Publish.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

const latestDatasetQuery = `SELECT document::text, format FROM dashboard_datasets ORDER BY published_at DESC LIMIT 1`

// Fetch implements Source.
func (s PostgresSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	if s.Pool == nil {
		return nil, "", errors.New("companies: postgres pool required")
	}
	var (
		document string
		format   string
	)
	if err := s.Pool.QueryRow(ctx, latestDatasetQuery).Scan(&document, &format); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", errors.New("companies: no dataset published")
		}
		return nil, "", fmt.Errorf("companies: query dataset: %w", err)
	}
	if Format(format) == FormatYAML {
		return []byte(document), FormatYAML, nil
	}
	return []byte(document), FormatJSON, nil
}
