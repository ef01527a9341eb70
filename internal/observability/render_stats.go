// Package observability tracks render statistics for the stats endpoint.
package observability

import (
	"sort"
	"sync"
	"time"
)

// RenderStats tracks render frequency and failures per chart type and
// per surface (svg, plan, embed, export).
type RenderStats struct {
	mu      sync.RWMutex
	byType  map[string]*TypeStats
	surface map[string]int64
	window  time.Duration
	started time.Time
}

// TypeStats holds statistics for one chart type.
type TypeStats struct {
	Type          string        `json:"type"`
	Renders       int64         `json:"renders"`
	Failures      int64         `json:"failures"`
	TotalDuration time.Duration `json:"totalDurationNs"`
	MaxDuration   time.Duration `json:"maxDurationNs"`
	LastSeen      time.Time     `json:"lastSeen"`
	LastError     string        `json:"lastError,omitempty"`
}

// AvgDuration returns the mean render duration.
func (s TypeStats) AvgDuration() time.Duration {
	if s.Renders == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Renders)
}

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	Since    time.Time        `json:"since"`
	Renders  int64            `json:"renders"`
	Failures int64            `json:"failures"`
	Types    []TypeStats      `json:"types"`
	Surfaces map[string]int64 `json:"surfaces"`
}

// NewRenderStats creates a new render statistics tracker.
// window: entries not seen within window are dropped by Prune
func NewRenderStats(window time.Duration) *RenderStats {
	return &RenderStats{
		byType:  make(map[string]*TypeStats),
		surface: make(map[string]int64),
		window:  window,
		started: time.Now(),
	}
}

// RecordRender records one render of chartType through surface.
// err is the failure drawn into a placeholder, or nil.
// This method is O(1) and thread-safe.
func (r *RenderStats) RecordRender(chartType, surface string, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, exists := r.byType[chartType]
	if !exists {
		stats = &TypeStats{Type: chartType}
		r.byType[chartType] = stats
	}

	stats.Renders++
	stats.TotalDuration += d
	if d > stats.MaxDuration {
		stats.MaxDuration = d
	}
	stats.LastSeen = time.Now()
	if err != nil {
		stats.Failures++
		stats.LastError = err.Error()
	}
	r.surface[surface]++
}

// Snapshot returns a copy of the stats with types sorted by render count
// (descending), then name.
func (r *RenderStats) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Since:    r.started,
		Types:    make([]TypeStats, 0, len(r.byType)),
		Surfaces: make(map[string]int64, len(r.surface)),
	}
	for _, s := range r.byType {
		snap.Types = append(snap.Types, *s)
		snap.Renders += s.Renders
		snap.Failures += s.Failures
	}
	for k, v := range r.surface {
		snap.Surfaces[k] = v
	}

	sort.Slice(snap.Types, func(i, j int) bool {
		if snap.Types[i].Renders == snap.Types[j].Renders {
			return snap.Types[i].Type < snap.Types[j].Type
		}
		return snap.Types[i].Renders > snap.Types[j].Renders
	})
	return snap
}

// Prune removes chart types where time.Since(LastSeen) > window.
// This should be called periodically (e.g., every 5 minutes).
func (r *RenderStats) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	threshold := time.Now().Add(-r.window)
	for typ, stats := range r.byType {
		if stats.LastSeen.Before(threshold) {
			delete(r.byType, typ)
		}
	}
}
