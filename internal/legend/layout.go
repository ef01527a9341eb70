// Package legend computes the pixel layout of a horizontally centered legend
// strip. The layout is pure arithmetic over measured label widths.
package legend

// Options holds the legend geometry constants.
type Options struct {
	SwatchSize      float64
	SwatchGap       float64
	ItemGap         float64
	BottomOffset    float64
	SecondaryOffset float64
	FontSize        float64
}

// DefaultOptions matches the on-screen legend.
var DefaultOptions = Options{
	SwatchSize:      12,
	SwatchGap:       6,
	ItemGap:         20,
	BottomOffset:    30,
	SecondaryOffset: 16,
	FontSize:        12,
}

// Item is one positioned legend entry.
type Item struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	SwatchX float64 `json:"swatchX"`
	SwatchY float64 `json:"swatchY"`
	TextX   float64 `json:"textX"`
	TextY   float64 `json:"textY"`
}

// Layout is the computed legend strip.
type Layout struct {
	Items      []Item  `json:"items"`
	StartX     float64 `json:"startX"`
	TotalWidth float64 `json:"totalWidth"`
	Y          float64 `json:"y"`
}

// Input describes what to lay out.
type Input struct {
	Keys     []string
	LabelFor func(key string) string
	Width    float64
	Height   float64
	// SecondaryRow is set when the category axis draws a second label line.
	SecondaryRow bool
}

// Compute lays out one row of items centered in the container. Zero keys
// yield no items and a zero-width strip at the container center.
func Compute(in Input, m Measurer, opts Options) Layout {
	y := in.Height - opts.BottomOffset
	if in.SecondaryRow {
		y -= opts.SecondaryOffset
	}
	if len(in.Keys) == 0 {
		return Layout{StartX: in.Width / 2, Y: y}
	}
	labelFor := in.LabelFor
	if labelFor == nil {
		labelFor = func(k string) string { return k }
	}

	items := make([]Item, len(in.Keys))
	var total float64
	for i, k := range in.Keys {
		label := labelFor(k)
		w := opts.SwatchSize + opts.SwatchGap + m.Measure(label)
		items[i] = Item{Key: k, Label: label, Width: w, Y: y}
		total += w
	}
	total += float64(len(items)-1) * opts.ItemGap

	startX := (in.Width - total) / 2
	x := startX
	for i := range items {
		it := &items[i]
		it.X = x
		it.SwatchX = x
		it.SwatchY = y
		it.TextX = x + opts.SwatchSize + opts.SwatchGap
		it.TextY = y + opts.SwatchSize*0.75
		x += it.Width + opts.ItemGap
	}

	return Layout{Items: items, StartX: startX, TotalWidth: total, Y: y}
}
