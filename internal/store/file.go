package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// FileStore keeps charts in memory and mirrors them to a single JSON array
// file after every mutation. The file is written to a temp file and renamed
// so readers never observe a partial document.
type FileStore struct {
	path string

	mu     sync.Mutex
	charts map[string]*types.SavedChart
}

// NewFileStore opens (or creates) the JSON file at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("store: failed to create directory: %w", err)
	}

	f := &FileStore{path: path, charts: make(map[string]*types.SavedChart)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return f, nil
	}

	var charts []*types.SavedChart
	if err := json.Unmarshal(data, &charts); err != nil {
		return nil, fmt.Errorf("store: failed to parse %s: %w", path, err)
	}
	for _, c := range charts {
		f.charts[c.ID] = c
	}
	return f, nil
}

// Get retrieves a chart by id.
func (f *FileStore) Get(_ context.Context, id string) (*types.SavedChart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.charts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(c)
}

// Put creates or replaces a chart and rewrites the file.
func (f *FileStore) Put(_ context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	in, err := snapshot(chart)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	stamp(in, f.charts[in.ID])
	if err := f.replace(in); err != nil {
		return nil, err
	}
	return snapshot(in)
}

// Update replaces an existing chart and rewrites the file.
func (f *FileStore) Update(_ context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	in, err := snapshot(chart)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.charts[in.ID]
	if !ok {
		return nil, ErrNotFound
	}
	stamp(in, existing)
	if err := f.replace(in); err != nil {
		return nil, err
	}
	return snapshot(in)
}

// Delete removes a chart and rewrites the file.
func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, ok := f.charts[id]
	if !ok {
		return ErrNotFound
	}
	delete(f.charts, id)
	if err := f.flush(); err != nil {
		f.charts[id] = prev
		return err
	}
	return nil
}

// List returns every chart ordered by creation time.
func (f *FileStore) List(_ context.Context) ([]*types.SavedChart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.SavedChart, 0, len(f.charts))
	for _, c := range f.charts {
		s, err := snapshot(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sortCharts(out)
	return out, nil
}

// Summaries returns the list view of every chart.
func (f *FileStore) Summaries(ctx context.Context) ([]types.ChartSummary, error) {
	charts, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(charts), nil
}

// Close is a no-op; every mutation is already on disk.
func (f *FileStore) Close() error { return nil }

// replace installs c and flushes, restoring the previous entry on failure.
// Caller must hold f.mu.
func (f *FileStore) replace(c *types.SavedChart) error {
	prev, had := f.charts[c.ID]
	f.charts[c.ID] = c
	if err := f.flush(); err != nil {
		if had {
			f.charts[c.ID] = prev
		} else {
			delete(f.charts, c.ID)
		}
		return err
	}
	return nil
}

// flush writes the whole chart set. Caller must hold f.mu.
func (f *FileStore) flush() error {
	charts := make([]*types.SavedChart, 0, len(f.charts))
	for _, c := range f.charts {
		charts = append(charts, c)
	}
	sortCharts(charts)

	data, err := json.MarshalIndent(charts, "", "  ")
	if err != nil {
		return fmt.Errorf("store: failed to encode charts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to rename temp file: %w", err)
	}
	return nil
}
