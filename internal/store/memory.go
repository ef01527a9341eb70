package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// MemoryStore keeps charts in a process-local map. State is not shared
// between server instances.
type MemoryStore struct {
	mu     sync.RWMutex
	charts map[string]*types.SavedChart
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{charts: make(map[string]*types.SavedChart)}
}

// Get retrieves a chart by id.
func (m *MemoryStore) Get(_ context.Context, id string) (*types.SavedChart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.charts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(c)
}

// Put creates or replaces a chart.
func (m *MemoryStore) Put(_ context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	in, err := snapshot(chart)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(in, m.charts[in.ID])
	m.charts[in.ID] = in
	return snapshot(in)
}

// Update replaces an existing chart.
func (m *MemoryStore) Update(_ context.Context, chart *types.SavedChart) (*types.SavedChart, error) {
	in, err := snapshot(chart)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.charts[in.ID]
	if !ok {
		return nil, ErrNotFound
	}
	stamp(in, existing)
	m.charts[in.ID] = in
	return snapshot(in)
}

// Delete removes a chart.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.charts[id]; !ok {
		return ErrNotFound
	}
	delete(m.charts, id)
	return nil
}

// List returns every chart ordered by creation time.
func (m *MemoryStore) List(_ context.Context) ([]*types.SavedChart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.SavedChart, 0, len(m.charts))
	for _, c := range m.charts {
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
func (m *MemoryStore) Summaries(ctx context.Context) ([]types.ChartSummary, error) {
	charts, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(charts), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// snapshot deep-copies a chart so no caller shares mutable state with the map.
func snapshot(c *types.SavedChart) (*types.SavedChart, error) {
	out := &types.SavedChart{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	if err := deepcopy.Copy(&out.Config, &c.Config); err != nil {
		return nil, fmt.Errorf("store: failed to copy config of %s: %w", c.ID, err)
	}
	if err := deepcopy.Copy(&out.Dataset, &c.Dataset); err != nil {
		return nil, fmt.Errorf("store: failed to copy dataset of %s: %w", c.ID, err)
	}
	return out, nil
}
