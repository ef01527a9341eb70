package types

import (
	"encoding/json"
	"time"
)

// ChartType is the closed set of supported chart kinds.
type ChartType string

const (
	ChartArea   ChartType = "area"
	ChartLine   ChartType = "line"
	ChartBar    ChartType = "bar"
	ChartPie    ChartType = "pie"
	ChartRadar  ChartType = "radar"
	ChartRadial ChartType = "radial"
)

// ChartTypes lists every supported type in gallery order.
var ChartTypes = []ChartType{ChartArea, ChartLine, ChartBar, ChartPie, ChartRadar, ChartRadial}

// Valid reports whether t is a supported chart type.
func (t ChartType) Valid() bool {
	for _, c := range ChartTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Cartesian reports whether the type is drawn against x/y axes.
func (t ChartType) Cartesian() bool {
	return t == ChartArea || t == ChartLine || t == ChartBar
}

// Theme selects light or dark palette values. ThemeSystem resolves to light
// on the server since there is no client preference to consult.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Resolve maps system and unknown values to a concrete theme.
func (t Theme) Resolve() Theme {
	if t == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// BarLayout is the bar orientation.
type BarLayout string

const (
	BarVertical   BarLayout = "vertical"
	BarHorizontal BarLayout = "horizontal"
)

// ColorVariant selects the normal palette or the fixed tooltip demo colors.
type ColorVariant string

const (
	ColorNormal      ColorVariant = "normal"
	ColorTooltipDemo ColorVariant = "tooltip-demo"
)

// Size is the chart size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Default chart dimensions.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// TooltipConfig is the wire form of tooltip settings. The render pipeline
// converts it to a format.Tooltip variant.
type TooltipConfig struct {
	Enabled         *bool           `json:"enabled,omitempty"`
	Variant         string          `json:"variant,omitempty"`
	ShowIndicator   *bool           `json:"showIndicator,omitempty"`
	ShowLabel       *bool           `json:"showLabel,omitempty"`
	CustomFormatter *bool           `json:"customFormatter,omitempty"`
	ShowTotal       *bool           `json:"showTotal,omitempty"`
	ShowIcons       *bool           `json:"showIcons,omitempty"`
	Formatters      json.RawMessage `json:"formatters,omitempty"`
}

// AxisConfig carries free-form axis options.
type AxisConfig struct {
	X json.RawMessage `json:"x,omitempty"`
	Y json.RawMessage `json:"y,omitempty"`
}

// ChartConfig is the declarative rendering specification of one chart.
// Optional booleans are pointers so that absent fields stay absent when a
// stored config is returned.
type ChartConfig struct {
	ID              string            `json:"id"`
	Type            ChartType         `json:"type"`
	XKey            string            `json:"xKey,omitempty"`
	YKeys           []string          `json:"yKeys,omitempty"`
	Stacked         *bool             `json:"stacked,omitempty"`
	StackedExpanded *bool             `json:"stackedExpanded,omitempty"`
	Stepped         *bool             `json:"stepped,omitempty"`
	Legend          *bool             `json:"legend,omitempty"`
	Gradient        *bool             `json:"gradient,omitempty"`
	Colors          map[string]string `json:"colors,omitempty"`
	ShowIcons       *bool             `json:"showIcons,omitempty"`
	CustomAxes      *bool             `json:"customAxes,omitempty"`
	ShowDots        *bool             `json:"showDots,omitempty"`
	BarLayout       BarLayout         `json:"barLayout,omitempty"`
	BarLabel        *bool             `json:"barLabel,omitempty"`
	Donut           *bool             `json:"donut,omitempty"`
	ShowLabels      *bool             `json:"showLabels,omitempty"`
	ShowGrid        *bool             `json:"showGrid,omitempty"`
	CenterLabel     *bool             `json:"centerLabel,omitempty"`
	CenterText      *bool             `json:"centerText,omitempty"`
	Interactive     *bool             `json:"interactive,omitempty"`
	ActiveIndex     *int              `json:"activeIndex,omitempty"`
	LineKeys        []string          `json:"lineKeys,omitempty"`
	Axis            *AxisConfig       `json:"axis,omitempty"`
	Tooltip         *TooltipConfig    `json:"tooltip,omitempty"`
	Theme           Theme             `json:"theme,omitempty"`
	ColorVariant    ColorVariant      `json:"colorVariant,omitempty"`
	Size            *Size             `json:"size,omitempty"`
}

// Flag reads an optional boolean with a default.
func Flag(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Dimensions returns the configured size with defaults applied per axis.
func (c ChartConfig) Dimensions() (width, height int) {
	width, height = DefaultWidth, DefaultHeight
	if c.Size != nil {
		if c.Size.Width > 0 {
			width = c.Size.Width
		}
		if c.Size.Height > 0 {
			height = c.Size.Height
		}
	}
	return width, height
}

// LegendVisible reports whether the legend is drawn. Default true.
func (c ChartConfig) LegendVisible() bool { return Flag(c.Legend, true) }

// TooltipEnabled reports whether tooltips are active. Default true.
func (c ChartConfig) TooltipEnabled() bool {
	return c.Tooltip == nil || Flag(c.Tooltip.Enabled, true)
}

// SeriesKeys returns yKeys followed by any lineKeys not already present.
func (c ChartConfig) SeriesKeys() []string {
	keys := append([]string(nil), c.YKeys...)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range c.LineKeys {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	return keys
}

// SavedChart is the persisted aggregate owned by the store.
type SavedChart struct {
	ID        string      `json:"id"`
	Config    ChartConfig `json:"config"`
	Dataset   Dataset     `json:"dataset"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ChartSummary is the list view of a saved chart.
type ChartSummary struct {
	ID             string    `json:"id"`
	Type           ChartType `json:"type"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	DataPointCount int       `json:"dataPointCount"`
	FieldCount     int       `json:"fieldCount"`
}

// Summary derives the list view of the chart.
func (s SavedChart) Summary() ChartSummary {
	return ChartSummary{
		ID:             s.ID,
		Type:           s.Config.Type,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		DataPointCount: len(s.Dataset.Rows),
		FieldCount:     len(s.Dataset.Fields),
	}
}
