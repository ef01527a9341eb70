package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// CreateChartsTableSQL creates the charts table. Timestamps are unix
// nanoseconds; the dataset column holds snappy-compressed JSON.
const CreateChartsTableSQL = `
CREATE TABLE IF NOT EXISTS charts (
    chart_id TEXT PRIMARY KEY,
    chart_type TEXT NOT NULL,
    config BLOB NOT NULL,
    dataset BLOB NOT NULL,
    row_count INTEGER NOT NULL,
    field_count INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
)`

// CreateChartsIndexSQL orders list scans.
const CreateChartsIndexSQL = `CREATE INDEX IF NOT EXISTS idx_charts_created ON charts(created_at, chart_id)`

const sqliteUpsertSQL = `
INSERT INTO charts (chart_id, chart_type, config, dataset, row_count, field_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chart_id) DO UPDATE SET
    chart_type = excluded.chart_type,
    config = excluded.config,
    dataset = excluded.dataset,
    row_count = excluded.row_count,
    field_count = excluded.field_count,
    updated_at = excluded.updated_at`

const sqliteUpdateSQL = `
UPDATE charts SET chart_type = ?, config = ?, dataset = ?, row_count = ?, field_count = ?, updated_at = ?
WHERE chart_id = ?`

// SQLiteStore implements Store on an embedded SQLite database in WAL mode.
type SQLiteStore struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool
	dbPath string
	mu     sync.Mutex // Write-only lock
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to initialize schema: %w", err)
	}

	// The file exists now, so the read-only pool can attach to it.
	readDB, err := sql.Open("sqlite3", "file:"+dbPath+"?_busy_timeout=5000&mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	s.readDB = readDB

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{CreateChartsTableSQL, CreateChartsIndexSQL} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Get retrieves a chart by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*types.SavedChart, error) {
	row := s.readDB.QueryRowContext(ctx,
		"SELECT chart_id, config, dataset, created_at, updated_at FROM charts WHERE chart_id = ?", id)
	c, err := scanSQLiteChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// Put creates or replaces a chart in a single transaction.
func (s *SQLiteStore) Put(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	config, dataset, err := encodeDocuments(chart)
	if err != nil {
		return nil, err
	}
	createdAt := chart.CreatedAt
	if createdAt.IsZero() {
		createdAt = chart.UpdatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqliteUpsertSQL,
		chart.ID, string(chart.Config.Type), config, snappy.Encode(nil, dataset),
		len(chart.Dataset.Rows), len(chart.Dataset.Fields),
		createdAt.UnixNano(), chart.UpdatedAt.UnixNano(),
	); err != nil {
		return nil, fmt.Errorf("store: failed to upsert chart %s: %w", chart.ID, err)
	}

	var created int64
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM charts WHERE chart_id = ?", chart.ID).Scan(&created); err != nil {
		return nil, fmt.Errorf("store: failed to read back chart %s: %w", chart.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: failed to commit chart %s: %w", chart.ID, err)
	}

	return stored(chart, time.Unix(0, created))
}

// Update replaces an existing chart in a single transaction.
func (s *SQLiteStore) Update(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	config, dataset, err := encodeDocuments(chart)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, sqliteUpdateSQL,
		string(chart.Config.Type), config, snappy.Encode(nil, dataset),
		len(chart.Dataset.Rows), len(chart.Dataset.Fields),
		chart.UpdatedAt.UnixNano(), chart.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to update chart %s: %w", chart.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	var created int64
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM charts WHERE chart_id = ?", chart.ID).Scan(&created); err != nil {
		return nil, fmt.Errorf("store: failed to read back chart %s: %w", chart.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: failed to commit chart %s: %w", chart.ID, err)
	}

	return stored(chart, time.Unix(0, created))
}

// Delete removes a chart.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM charts WHERE chart_id = ?", id)
	if err != nil {
		return fmt.Errorf("store: failed to delete chart %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every chart ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]*types.SavedChart, error) {
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT chart_id, config, dataset, created_at, updated_at FROM charts ORDER BY created_at, chart_id")
	if err != nil {
		return nil, fmt.Errorf("store: failed to list charts: %w", err)
	}
	defer rows.Close()

	var out []*types.SavedChart
	for rows.Next() {
		c, err := scanSQLiteChart(rows)
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
func (s *SQLiteStore) Summaries(ctx context.Context) ([]types.ChartSummary, error) {
	rows, err := s.readDB.QueryContext(ctx,
		"SELECT chart_id, chart_type, row_count, field_count, created_at, updated_at FROM charts ORDER BY created_at, chart_id")
	if err != nil {
		return nil, fmt.Errorf("store: failed to list charts: %w", err)
	}
	defer rows.Close()

	out := []types.ChartSummary{}
	for rows.Next() {
		var (
			sum              types.ChartSummary
			chartType        string
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &chartType, &sum.DataPointCount, &sum.FieldCount, &created, &updated); err != nil {
			return nil, fmt.Errorf("store: failed to scan summary: %w", err)
		}
		sum.Type = types.ChartType(chartType)
		sum.CreatedAt = time.Unix(0, created).UTC()
		sum.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to iterate summaries: %w", err)
	}
	return out, nil
}

// Close closes the read pool, then the writer.
func (s *SQLiteStore) Close() error {
	if err := s.readDB.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteChart(row rowScanner) (*types.SavedChart, error) {
	var (
		c                types.SavedChart
		config, packed   []byte
		created, updated int64
	)
	if err := row.Scan(&c.ID, &config, &packed, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: failed to scan chart: %w", err)
	}

	dataset, err := snappy.Decode(nil, packed)
	if err != nil {
		return nil, fmt.Errorf("store: failed to decompress dataset of %s: %w", c.ID, err)
	}
	if err := decodeDocuments(&c, config, dataset); err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(0, created).UTC()
	c.UpdatedAt = time.Unix(0, updated).UTC()
	return &c, nil
}

// stored builds the snapshot returned from a write: the caller's documents
// with the persisted creation time.
func stored(in *types.SavedChart, createdAt time.Time) (*types.SavedChart, error) {
	out, err := snapshot(in)
	if err != nil {
		return nil, err
	}
	out.CreatedAt = createdAt.UTC()
	out.UpdatedAt = in.UpdatedAt.UTC()
	return out, nil
}
