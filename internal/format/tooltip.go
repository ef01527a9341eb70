package format

import (
	"github.com/chartsmith/chartsmith/pkg/types"
)

// Variant names a tooltip formatting behavior.
type Variant string

const (
	VariantDefault        Variant = "default"
	VariantLineIndicator  Variant = "line-indicator"
	VariantNoIndicator    Variant = "no-indicator"
	VariantCustomLabel    Variant = "custom-label"
	VariantLabelFormatter Variant = "label-formatter"
	VariantNoLabel        Variant = "no-label"
	VariantFormatter      Variant = "formatter"
	VariantIcons          Variant = "icons"
	VariantAdvanced       Variant = "advanced"
)

// Indicator is the marker drawn beside each tooltip entry.
type Indicator string

const (
	IndicatorDot  Indicator = "dot"
	IndicatorLine Indicator = "line"
	IndicatorNone Indicator = "none"
)

// Fixed literals used by the formatting variants.
const (
	LabelTag    = "Period: "
	DefaultUnit = "kcal"
)

// Icons maps well-known demo series names to icon identifiers.
var Icons = map[string]string{
	"desktop": "monitor",
	"mobile":  "smartphone",
	"tablet":  "tablet",
}

// Tooltip is a formatting variant. The set of implementations is closed.
type Tooltip interface {
	Variant() Variant
	indicator() Indicator
	label(category types.Value) (string, bool)
	value(v types.Value) string
	icon(key string) string
	showTotal() bool
}

// base supplies the default behavior each variant starts from.
type base struct{}

func (base) indicator() Indicator { return IndicatorDot }

func (base) label(c types.Value) (string, bool) { return TooltipDate(c), true }

func (base) value(v types.Value) string { return v.Text() }

func (base) icon(string) string { return "" }

func (base) showTotal() bool { return false }

// Default passes values through and formats date labels.
type Default struct {
	base
	Indicator Indicator
}

func (Default) Variant() Variant { return VariantDefault }

func (d Default) indicator() Indicator {
	if d.Indicator == "" {
		return IndicatorDot
	}
	return d.Indicator
}

// CustomLabel replaces the heading with a fixed display label.
type CustomLabel struct {
	base
	Label string
}

func (CustomLabel) Variant() Variant { return VariantCustomLabel }

func (c CustomLabel) label(cat types.Value) (string, bool) {
	if c.Label == "" {
		return TooltipDate(cat), true
	}
	return c.Label, true
}

// LabelFormatter prefixes the heading with LabelTag.
type LabelFormatter struct{ base }

func (LabelFormatter) Variant() Variant { return VariantLabelFormatter }

func (LabelFormatter) label(c types.Value) (string, bool) {
	return LabelTag + TooltipDate(c), true
}

// NoLabel suppresses the heading.
type NoLabel struct{ base }

func (NoLabel) Variant() Variant { return VariantNoLabel }

func (NoLabel) label(types.Value) (string, bool) { return "", false }

// ValueFormatter groups digits and appends Unit.
type ValueFormatter struct {
	base
	Unit string
}

func (ValueFormatter) Variant() Variant { return VariantFormatter }

func (f ValueFormatter) value(v types.Value) string { return WithUnit(v, f.Unit) }

// Advanced groups digits and can append a total across series.
type Advanced struct {
	base
	ShowTotal bool
}

func (Advanced) Variant() Variant { return VariantAdvanced }

func (Advanced) value(v types.Value) string { return WithUnit(v, "") }

func (a Advanced) showTotal() bool { return a.ShowTotal }

// WithIcons attaches icons to known series names.
type WithIcons struct{ base }

func (WithIcons) Variant() Variant { return VariantIcons }

func (WithIcons) icon(key string) string { return Icons[key] }

// FromConfig selects the tooltip variant for a chart. An explicit variant
// name wins; otherwise the legacy boolean flags are consulted. xLabel is the
// display label of the category field.
func FromConfig(tc *types.TooltipConfig, xLabel string) Tooltip {
	if tc == nil {
		return Default{}
	}
	switch Variant(tc.Variant) {
	case VariantDefault:
		return Default{Indicator: IndicatorDot}
	case VariantLineIndicator:
		return Default{Indicator: IndicatorLine}
	case VariantNoIndicator:
		return Default{Indicator: IndicatorNone}
	case VariantCustomLabel:
		return CustomLabel{Label: xLabel}
	case VariantLabelFormatter:
		return LabelFormatter{}
	case VariantNoLabel:
		return NoLabel{}
	case VariantFormatter:
		return ValueFormatter{Unit: DefaultUnit}
	case VariantIcons:
		return WithIcons{}
	case VariantAdvanced:
		return Advanced{ShowTotal: types.Flag(tc.ShowTotal, false)}
	}

	switch {
	case !types.Flag(tc.ShowLabel, true):
		return NoLabel{}
	case types.Flag(tc.ShowTotal, false):
		return Advanced{ShowTotal: true}
	case types.Flag(tc.CustomFormatter, false):
		return ValueFormatter{Unit: DefaultUnit}
	case types.Flag(tc.ShowIcons, false):
		return WithIcons{}
	case !types.Flag(tc.ShowIndicator, true):
		return Default{Indicator: IndicatorNone}
	}
	return Default{}
}

// SeriesValue is one series' value at a data point.
type SeriesValue struct {
	Key   string
	Label string
	Value types.Value
}

// Entry is one formatted tooltip line.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// Content is a fully formatted tooltip.
type Content struct {
	Variant   Variant   `json:"variant"`
	Indicator Indicator `json:"indicator"`
	Label     string    `json:"label,omitempty"`
	HasLabel  bool      `json:"hasLabel"`
	Entries   []Entry   `json:"entries"`
	Total     string    `json:"total,omitempty"`
	HasTotal  bool      `json:"hasTotal"`
}

// Format renders the tooltip for one data point. Missing series values are
// skipped.
func Format(t Tooltip, category types.Value, series []SeriesValue) Content {
	c := Content{Variant: t.Variant(), Indicator: t.indicator(), Entries: []Entry{}}
	c.Label, c.HasLabel = t.label(category)

	var total float64
	for _, s := range series {
		label := s.Label
		if label == "" {
			label = s.Key
		}
		c.Entries = append(c.Entries, Entry{
			Key:   s.Key,
			Label: label,
			Value: t.value(s.Value),
			Icon:  t.icon(s.Key),
		})
		if f, ok := s.Value.Float(); ok {
			total += f
		}
	}

	if t.showTotal() {
		c.HasTotal = true
		c.Total = Thousands(total)
	}
	return c
}

// Point builds the series values of one dataset row.
func Point(ds types.Dataset, row types.Row, seriesKeys []string) []SeriesValue {
	out := make([]SeriesValue, 0, len(seriesKeys))
	for _, k := range seriesKeys {
		v, ok := row[k]
		if !ok {
			continue
		}
		out = append(out, SeriesValue{Key: k, Label: ds.Label(k), Value: v})
	}
	return out
}
