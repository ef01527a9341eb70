package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// CreatePostgresChartsTableSQL creates the charts table on Postgres.
const CreatePostgresChartsTableSQL = `
CREATE TABLE IF NOT EXISTS charts (
    chart_id TEXT PRIMARY KEY,
    chart_type TEXT NOT NULL,
    config JSONB NOT NULL,
    dataset JSONB NOT NULL,
    row_count INTEGER NOT NULL,
    field_count INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

const pgUpsertSQL = `
INSERT INTO charts (chart_id, chart_type, config, dataset, row_count, field_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (chart_id) DO UPDATE SET
    chart_type = EXCLUDED.chart_type,
    config = EXCLUDED.config,
    dataset = EXCLUDED.dataset,
    row_count = EXCLUDED.row_count,
    field_count = EXCLUDED.field_count,
    updated_at = EXCLUDED.updated_at
RETURNING created_at, updated_at`

const pgUpdateSQL = `
UPDATE charts SET chart_type = $2, config = $3, dataset = $4, row_count = $5, field_count = $6, updated_at = $7
WHERE chart_id = $1
RETURNING created_at, updated_at`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: unable to parse database config: %w", err)
	}
	cfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: unable to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, CreatePostgresChartsTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: failed to initialize schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get retrieves a chart by id.
func (p *PostgresStore) Get(ctx context.Context, id string) (*types.SavedChart, error) {
	row := p.pool.QueryRow(ctx,
		"SELECT chart_id, config, dataset, created_at, updated_at FROM charts WHERE chart_id = $1", id)
	c, err := scanPostgresChart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// Put creates or replaces a chart.
func (p *PostgresStore) Put(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	config, dataset, err := encodeDocuments(chart)
	if err != nil {
		return nil, err
	}
	createdAt := chart.CreatedAt
	if createdAt.IsZero() {
		createdAt = chart.UpdatedAt
	}

	var created, updated time.Time
	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, pgUpsertSQL,
			chart.ID, string(chart.Config.Type), string(config), string(dataset),
			len(chart.Dataset.Rows), len(chart.Dataset.Fields), createdAt, chart.UpdatedAt,
		).Scan(&created, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("store: failed to upsert chart %s: %w", chart.ID, err)
	}
	return fromReturning(chart, created, updated)
}

// Update replaces an existing chart.
func (p *PostgresStore) Update(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	config, dataset, err := encodeDocuments(chart)
	if err != nil {
		return nil, err
	}

	var created, updated time.Time
	err = pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, pgUpdateSQL,
			chart.ID, string(chart.Config.Type), string(config), string(dataset),
			len(chart.Dataset.Rows), len(chart.Dataset.Fields), chart.UpdatedAt,
		).Scan(&created, &updated)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to update chart %s: %w", chart.ID, err)
	}
	return fromReturning(chart, created, updated)
}

// Delete removes a chart.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM charts WHERE chart_id = $1", id)
	if err != nil {
		return fmt.Errorf("store: failed to delete chart %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every chart ordered by creation time.
func (p *PostgresStore) List(ctx context.Context) ([]*types.SavedChart, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT chart_id, config, dataset, created_at, updated_at FROM charts ORDER BY created_at, chart_id")
	if err != nil {
		return nil, fmt.Errorf("store: failed to list charts: %w", err)
	}
	defer rows.Close()

	var out []*types.SavedChart
	for rows.Next() {
		c, err := scanPostgresChart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to iterate charts: %w", err)
	}
	return out, nil
}

// Summaries reads the list view without decoding documents.
func (p *PostgresStore) Summaries(ctx context.Context) ([]types.ChartSummary, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT chart_id, chart_type, row_count, field_count, created_at, updated_at FROM charts ORDER BY created_at, chart_id")
	if err != nil {
		return nil, fmt.Errorf("store: failed to list charts: %w", err)
	}
	defer rows.Close()

	out := []types.ChartSummary{}
	for rows.Next() {
		var (
			sum       types.ChartSummary
			chartType string
		)
		if err := rows.Scan(&sum.ID, &chartType, &sum.DataPointCount, &sum.FieldCount, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan summary: %w", err)
		}
		sum.Type = types.ChartType(chartType)
		sum.CreatedAt = sum.CreatedAt.UTC()
		sum.UpdatedAt = sum.UpdatedAt.UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to iterate summaries: %w", err)
	}
	return out, nil
}

// Close closes the pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanPostgresChart(row pgx.Row) (*types.SavedChart, error) {
	var (
		c               types.SavedChart
		config, dataset []byte
	)
	if err := row.Scan(&c.ID, &config, &dataset, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: failed to scan chart: %w", err)
	}
	if err := decodeDocuments(&c, config, dataset); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func fromReturning(in *types.SavedChart, created, updated time.Time) (*types.SavedChart, error) {
	out, err := snapshot(in)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = created.UTC()
	out.UpdatedAt = updated.UTC()
	return out, nil
}
