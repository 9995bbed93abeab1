package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/heatmap-backend-go/internal/database"
	"github.com/jengzang/heatmap-backend-go/internal/datatable"
	"github.com/jengzang/heatmap-backend-go/internal/models"
)

// MetricsRepository handles database operations for bucketed metric rows
type MetricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Save inserts or replaces a row. Rows are keyed by metric and id. With
// row.Merge set, the dataset is accumulated into the stored one.
func (r *MetricsRepository) Save(ctx context.Context, row models.MetricRow) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		dataset := row.Dataset
		if row.Merge {
			merged, err := mergeDataset(ctx, tx, row.Metric, row.ID, row.Dataset)
			if err != nil {
				return err
			}
			dataset = merged
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO heatmap_metrics (id, metric, entity_id, time_bucket, dataset, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(metric, id) DO UPDATE SET
				entity_id = excluded.entity_id,
				time_bucket = excluded.time_bucket,
				dataset = excluded.dataset,
				updated_at = CURRENT_TIMESTAMP`,
			row.ID, row.Metric, row.Entity, row.TimeBucket, dataset)
		if err != nil {
			return fmt.Errorf("failed to save row %s: %w", row.ID, err)
		}
		return nil
	})
}

func mergeDataset(ctx context.Context, tx *sql.Tx, metric, id, dataset string) (string, error) {
	var stored string
	err := tx.QueryRowContext(ctx, "SELECT dataset FROM heatmap_metrics WHERE metric = ? AND id = ?", metric, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return dataset, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load row %s: %w", id, err)
	}

	base, err := datatable.Parse(stored)
	if err != nil {
		return "", fmt.Errorf("stored row %s: %w", id, err)
	}
	incoming, err := datatable.Parse(dataset)
	if err != nil {
		return "", err
	}
	base.Append(incoming)
	return base.String(), nil
}

// MultiGet returns the stored datasets of metric keyed by row id. Ids with
// no stored row are absent from the result.
func (r *MetricsRepository) MultiGet(ctx context.Context, metric string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT id, dataset FROM heatmap_metrics WHERE metric = ? AND id IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, metric)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, dataset string
		if err := rows.Scan(&id, &dataset); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		out[id] = dataset
	}

	return out, rows.Err()
}

// Get returns the stored row id of metric, sql.ErrNoRows when absent.
func (r *MetricsRepository) Get(ctx context.Context, metric, id string) (*models.MetricRow, error) {
	var row models.MetricRow
	err := r.db.QueryRowContext(ctx,
		`SELECT id, metric, entity_id, time_bucket, dataset FROM heatmap_metrics WHERE metric = ? AND id = ?`, metric, id).
		Scan(&row.ID, &row.Metric, &row.Entity, &row.TimeBucket, &row.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to get row %s: %w", id, err)
	}
	return &row, nil
}
