// Package store persists saved charts behind a single Store interface.
//
// Backends: memory, file (JSON array), sqlite, postgres and mongo. Every
// mutating call is atomic per chart; concurrent writers to the same id get
// last-write-wins semantics.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// ErrNotFound is returned when a chart id is absent.
var ErrNotFound = errors.New("store: chart not found")

// Store persists SavedChart aggregates. Returned charts are snapshots; callers
// may mutate them freely.
type Store interface {
	// Get retrieves a chart by id.
	Get(ctx context.Context, id string) (*types.SavedChart, error)

	// Put creates or replaces a chart. An existing chart keeps its CreatedAt;
	// a new chart takes CreatedAt from UpdatedAt when unset.
	Put(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error)

	// Update replaces the config and dataset of an existing chart and sets
	// UpdatedAt. Returns ErrNotFound if the chart does not exist.
	Update(ctx context.Context, chart *types.SavedChart) (*types.SavedChart, error)

	// Delete removes a chart. Returns ErrNotFound if the chart does not exist.
	Delete(ctx context.Context, id string) error

	// List returns every chart ordered by creation time.
	List(ctx context.Context) ([]*types.SavedChart, error)

	// Summaries returns the list view of every chart ordered by creation time.
	Summaries(ctx context.Context) ([]types.ChartSummary, error)

	// Close releases backend resources.
	Close() error
}

// stamp fills the timestamps of an incoming chart against the stored one.
func stamp(in *types.SavedChart, existing *types.SavedChart) {
	if existing != nil {
		in.CreatedAt = existing.CreatedAt
		return
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = in.UpdatedAt
	}
}

// sortCharts orders charts by creation time, then id.
func sortCharts(charts []*types.SavedChart) {
	sort.Slice(charts, func(i, j int) bool {
		if charts[i].CreatedAt.Equal(charts[j].CreatedAt) {
			return charts[i].ID < charts[j].ID
		}
		return charts[i].CreatedAt.Before(charts[j].CreatedAt)
	})
}

func summarize(charts []*types.SavedChart) []types.ChartSummary {
	out := make([]types.ChartSummary, len(charts))
	for i, c := range charts {
		out[i] = c.Summary()
	}
	return out
}

// encodeDocuments serializes the config and dataset documents of a chart.
func encodeDocuments(c *types.SavedChart) (config, dataset []byte, err error) {
	config, err = json.Marshal(c.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to encode config: %w", err)
	}
	dataset, err = json.Marshal(c.Dataset)
	if err != nil {
		return nil, nil, fmt.Errorf("store: failed to encode dataset: %w", err)
	}
	return config, dataset, nil
}

// decodeDocuments restores the config and dataset documents into c.
func decodeDocuments(c *types.SavedChart, config, dataset []byte) error {
	if err := json.Unmarshal(config, &c.Config); err != nil {
		return fmt.Errorf("store: failed to decode config of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal(dataset, &c.Dataset); err != nil {
		return fmt.Errorf("store: failed to decode dataset of %s: %w", c.ID, err)
	}
	return nil
}
