// Package render turns a chart config and dataset into a deterministic render
// plan and draws that plan as SVG.
package render

import (
	"fmt"

	"github.com/chartsmith/chartsmith/internal/axis"
	"github.com/chartsmith/chartsmith/internal/colors"
	"github.com/chartsmith/chartsmith/internal/format"
	"github.com/chartsmith/chartsmith/internal/legend"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// MaxTicks bounds the number of value axis ticks.
const MaxTicks = 6

// Options carries per-call render settings.
type Options struct {
	// Theme overrides the config theme when set.
	Theme types.Theme
	// Width and Height apply when the config carries no size.
	Width  int
	Height int
	// Measurer measures legend and axis text. Defaults to the face the SVG
	// sets text in, at the legend font size.
	Measurer legend.Measurer
	// Legend overrides the legend geometry.
	Legend *legend.Options
}

// Plan is the fully resolved set of visual parameters for one chart.
type Plan struct {
	ChartID    string            `json:"chartId,omitempty"`
	Type       types.ChartType   `json:"type"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Theme      types.Theme       `json:"theme"`
	Series     []colors.Series   `json:"series"`
	Colors     map[string]string `json:"colors"`
	Domain     *axis.Domain      `json:"domain,omitempty"`
	Ticks      []float64         `json:"ticks,omitempty"`
	Categories []string          `json:"categories"`
	Legend     *legend.Layout    `json:"legend,omitempty"`
	Tooltips   []format.Content  `json:"tooltips,omitempty"`
	TextColor  string            `json:"textColor"`
	GridColor  string            `json:"gridColor"`
	Stacked    bool              `json:"stacked"`
	Expanded   bool              `json:"expanded"`
	Horizontal bool              `json:"horizontal"`

	keys   []string
	rows   []types.Row
	cfg    types.ChartConfig
	fonts    legend.Measurer
	fontSize float64
	swatch   float64
}

// ColorOf returns the resolved color of a series or slice key.
func (p *Plan) ColorOf(key string) string { return p.Colors[key] }

// Keys returns the series keys for cartesian and radar charts, and the
// category labels for pie and radial charts.
func (p *Plan) Keys() []string { return p.keys }

// Build computes the render plan. Colors and the domain are resolved first;
// the legend consumes the resolved labels.
func Build(cfg types.ChartConfig, ds types.Dataset, opts Options) (*Plan, error) {
	if !cfg.Type.Valid() {
		return nil, fmt.Errorf("render: unsupported chart type %q", cfg.Type)
	}

	theme := cfg.Theme
	if opts.Theme != "" {
		theme = opts.Theme
	}
	theme = theme.Resolve()

	width, height := cfg.Dimensions()
	if cfg.Size == nil {
		if opts.Width > 0 {
			width = opts.Width
		}
		if opts.Height > 0 {
			height = opts.Height
		}
	}

	lopts := legend.DefaultOptions
	if opts.Legend != nil {
		lopts = *opts.Legend
	}
	if lopts.FontSize <= 0 {
		lopts.FontSize = legend.DefaultOptions.FontSize
	}
	m := opts.Measurer
	if m == nil {
		m = legend.NewFaceMeasurer(lopts.FontSize)
	}

	p := &Plan{
		ChartID:    cfg.ID,
		Type:       cfg.Type,
		Width:      width,
		Height:     height,
		Theme:      theme,
		TextColor:  colors.TextColor(theme),
		GridColor:  colors.GridColor(theme),
		Stacked:    types.Flag(cfg.Stacked, false) || types.Flag(cfg.StackedExpanded, false),
		Expanded:   types.Flag(cfg.StackedExpanded, false),
		Horizontal: cfg.Type == types.ChartBar && cfg.BarLayout == types.BarHorizontal,
		Categories: make([]string, len(ds.Rows)),
		rows:       ds.Rows,
		cfg:        cfg,
		fonts:      m,
		fontSize:   lopts.FontSize,
		swatch:     lopts.SwatchSize,
	}

	for i, row := range ds.Rows {
		p.Categories[i] = format.AxisTick(row[cfg.XKey])
	}

	labelFor := ds.Label
	switch cfg.Type {
	case types.ChartPie, types.ChartRadial:
		p.keys = p.Categories
		labelFor = func(k string) string { return k }
	default:
		p.keys = cfg.SeriesKeys()
	}

	p.Series = colors.Assign(p.keys)
	p.Colors = colors.Resolve(p.Series, cfg.Colors, theme, cfg.ColorVariant)

	switch {
	case cfg.Type == types.ChartPie:
	case p.Expanded:
		d := axis.Domain{Min: 0, Max: 1}
		p.Domain = &d
	case p.Stacked:
		d := axis.ComputeStacked(ds.Rows, cfg.YKeys)
		p.Domain = &d
	default:
		d := axis.Compute(ds.Rows, p.valueKeys())
		p.Domain = &d
	}
	if p.Domain != nil {
		p.Ticks = p.Domain.Ticks(MaxTicks)
	}

	if cfg.LegendVisible() && len(p.keys) > 0 {
		var secondary bool
		if f, ok := ds.Field(cfg.XKey); ok && f.SecondaryLabel != "" {
			secondary = true
		}
		l := legend.Compute(legend.Input{
			Keys:         p.keys,
			LabelFor:     labelFor,
			Width:        float64(width),
			Height:       float64(height),
			SecondaryRow: secondary,
		}, m, lopts)
		p.Legend = &l
	}

	if cfg.TooltipEnabled() {
		t := format.FromConfig(cfg.Tooltip, ds.Label(cfg.XKey))
		p.Tooltips = make([]format.Content, len(ds.Rows))
		for i, row := range ds.Rows {
			p.Tooltips[i] = format.Format(t, row[cfg.XKey], format.Point(ds, row, cfg.SeriesKeys()))
		}
	}

	return p, nil
}

// valueKeys are the keys whose numbers drive the value axis.
func (p *Plan) valueKeys() []string {
	switch p.Type {
	case types.ChartRadial:
		return p.cfg.YKeys
	default:
		return p.cfg.SeriesKeys()
	}
}

// value returns the numeric value of key in row i, or 0 when absent.
func (p *Plan) value(i int, key string) float64 {
	f, _ := p.rows[i][key].Float()
	return f
}
