package companies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrilens/dashboard/internal/platform/db"
)

// Schema creates the table PostgresSource reads from.
const Schema = `CREATE TABLE IF NOT EXISTS dashboard_datasets (
	id BIGSERIAL PRIMARY KEY,
	document JSONB NOT NULL,
	format TEXT NOT NULL DEFAULT 'json',
	published_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// KeepPublished is the number of dataset versions retained after a publish.
const KeepPublished = 10

const (
	insertDatasetQuery = `INSERT INTO dashboard_datasets (document, format) VALUES ($1::jsonb, 'json') RETURNING id`
	pruneDatasetsQuery = `DELETE FROM dashboard_datasets WHERE id NOT IN (SELECT id FROM dashboard_datasets ORDER BY published_at DESC, id DESC LIMIT $1)`
)

// EncodeDocument renders ds as the canonical JSON document.
func EncodeDocument(ds *Dataset) ([]byte, error) {
	if ds == nil {
		return nil, errors.New("companies: dataset required")
	}
	return json.Marshal(ds)
}

// Publish stores ds as the newest dataset version and prunes old versions in
// one transaction. It returns the new row id.
func Publish(ctx context.Context, pool *pgxpool.Pool, ds *Dataset) (int64, error) {
	if pool == nil {
		return 0, errors.New("companies: postgres pool required")
	}
	doc, err := EncodeDocument(ds)
	if err != nil {
		return 0, err
	}
	var id int64
	err = db.WithTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("companies: ensure schema: %w", err)
		}
		if err := tx.QueryRow(ctx, insertDatasetQuery, string(doc)).Scan(&id); err != nil {
			return fmt.Errorf("companies: insert dataset: %w", err)
		}
		if _, err := tx.Exec(ctx, pruneDatasetsQuery, KeepPublished); err != nil {
			return fmt.Errorf("companies: prune datasets: %w", err)
		}
		return nil
	})
	return id, err
}
