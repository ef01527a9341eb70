package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/chartsmith/chartsmith/internal/colors"
	"github.com/chartsmith/chartsmith/internal/format"
	"github.com/chartsmith/chartsmith/internal/legend"
	"github.com/chartsmith/chartsmith/pkg/types"
)

const (
	marginTop   = 16
	marginRight = 16
	marginLeft  = 48
	labelBand   = 24
	legendGap   = 8
)

var (
	backgroundLight = drawing.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	backgroundDark  = drawing.Color{R: 0x09, G: 0x09, B: 0x0b, A: 0xff}
	fallbackColor   = drawing.Color{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

// Background returns the page background for a theme.
func Background(theme types.Theme) drawing.Color {
	if theme.Resolve() == types.ThemeDark {
		return backgroundDark
	}
	return backgroundLight
}

type box struct {
	left, top, right, bottom float64
}

func (b box) width() float64  { return b.right - b.left }
func (b box) height() float64 { return b.bottom - b.top }

// newRenderer is the chart.RendererProvider every chart is drawn through.
// Text is set in legend.Font at legend.DPI, the face and resolution the
// legend and axis labels are measured with.
func newRenderer(width, height int) (chart.Renderer, error) {
	r, err := chart.SVG(width, height)
	if err != nil {
		return nil, err
	}
	f, err := legend.Font()
	if err != nil {
		return nil, err
	}
	r.SetDPI(legend.DPI)
	r.SetFont(f)
	return escaper{r}, nil
}

// escaper escapes text bodies, which the SVG renderer writes verbatim.
type escaper struct {
	chart.Renderer
}

// Text implements chart.Renderer.
func (e escaper) Text(body string, x, y int) {
	e.Renderer.Text(html.EscapeString(body), x, y)
}

// sized adds width and height to the root element, which go-chart writes
// with a viewBox only.
func sized(svg []byte, width, height int) []byte {
	attrs := fmt.Sprintf(`<svg width="%d" height="%d" `, width, height)
	return bytes.Replace(svg, []byte("<svg "), []byte(attrs), 1)
}

// canvas wraps a go-chart renderer with plan-aware drawing helpers.
type canvas struct {
	r chart.Renderer
	p *Plan
}

// Draw renders the plan as an SVG document.
func Draw(p *Plan) ([]byte, error) {
	c := &canvas{p: p}
	draw := c.draw
	if p.Type == types.ChartPie {
		if _, total := c.slices(); total > 0 {
			draw = c.drawPie
		}
	}

	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return nil, err
	}
	return sized(buf.Bytes(), p.Width, p.Height), nil
}

// draw renders charts that go-chart has no chart type for onto its renderer
// primitives.
func (c *canvas) draw(w io.Writer) error {
	r, err := newRenderer(c.p.Width, c.p.Height)
	if err != nil {
		return fmt.Errorf("render: failed to create renderer: %w", err)
	}
	c.r = r
	c.rect(0, 0, float64(c.p.Width), float64(c.p.Height), Background(c.p.Theme))

	switch c.p.Type {
	case types.ChartBar:
		c.bars()
	case types.ChartLine:
		c.lines(false)
	case types.ChartArea:
		c.lines(true)
	case types.ChartPie:
		// Only a pie with nothing to slice gets here.
		cx, cy, _ := c.center(c.plot())
		c.centeredText("No data", cx, cy)
	case types.ChartRadar:
		c.radar()
	case types.ChartRadial:
		c.radial()
	default:
		return fmt.Errorf("render: unsupported chart type %q", c.p.Type)
	}
	c.legend()

	if err := r.Save(w); err != nil {
		return fmt.Errorf("render: failed to write svg: %w", err)
	}
	return nil
}

// plot is the data area, above the category labels and the legend.
func (c *canvas) plot() box {
	bottom := float64(c.p.Height) - labelBand - legendGap
	if c.p.Legend != nil {
		bottom = c.p.Legend.Y - labelBand - legendGap
	}
	b := box{left: marginLeft, top: marginTop, right: float64(c.p.Width) - marginRight, bottom: bottom}
	if !c.p.Type.Cartesian() {
		b.left = marginRight
	}
	if b.bottom < b.top+1 {
		b.bottom = b.top + 1
	}
	return b
}

func (c *canvas) color(key string) drawing.Color {
	return colors.MustParse(c.p.ColorOf(key), fallbackColor)
}

func (c *canvas) textColor() drawing.Color {
	return colors.MustParse(c.p.TextColor, fallbackColor)
}

func (c *canvas) gridColor() drawing.Color {
	return colors.MustParse(c.p.GridColor, fallbackColor)
}

func (c *canvas) rect(x0, y0, x1, y1 float64, fill drawing.Color) {
	c.r.ResetStyle()
	c.r.SetFillColor(fill)
	c.r.MoveTo(px(x0), px(y0))
	c.r.LineTo(px(x1), px(y0))
	c.r.LineTo(px(x1), px(y1))
	c.r.LineTo(px(x0), px(y1))
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(x0, y0, x1, y1 float64, stroke drawing.Color, width float64) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(stroke)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(px(x0), px(y0))
	c.r.LineTo(px(x1), px(y1))
	c.r.Stroke()
}

func (c *canvas) polyline(pts [][2]float64, stroke drawing.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	c.r.ResetStyle()
	c.r.SetStrokeColor(stroke)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(px(pts[0][0]), px(pts[0][1]))
	for _, pt := range pts[1:] {
		c.r.LineTo(px(pt[0]), px(pt[1]))
	}
	c.r.Stroke()
}

func (c *canvas) polygon(pts [][2]float64, fill drawing.Color) {
	if len(pts) < 3 {
		return
	}
	c.r.ResetStyle()
	c.r.SetFillColor(fill)
	c.r.MoveTo(px(pts[0][0]), px(pts[0][1]))
	for _, pt := range pts[1:] {
		c.r.LineTo(px(pt[0]), px(pt[1]))
	}
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) dot(x, y, radius float64, fill drawing.Color) {
	c.r.ResetStyle()
	c.r.SetFillColor(fill)
	c.r.Circle(radius, px(x), px(y))
}

// text draws s with its left edge at x and baseline at y.
func (c *canvas) text(s string, x, y float64) {
	// go-chart's box drawing clears the font, so set it on every call.
	f, _ := legend.Font()
	c.r.ResetStyle()
	c.r.SetFont(f)
	c.r.SetFontColor(c.textColor())
	c.r.SetFontSize(c.p.fontSize)
	c.r.Text(s, px(x), px(y))
}

func (c *canvas) centeredText(s string, cx, y float64) {
	c.text(s, cx-c.p.fonts.Measure(s)/2, y)
}

func (c *canvas) rightText(s string, right, y float64) {
	c.text(s, right-c.p.fonts.Measure(s), y)
}

// valuePos maps a value onto the value axis of the plot box.
func (c *canvas) valuePos(v float64, b box) float64 {
	d := c.p.Domain
	if d == nil || d.Span() == 0 {
		if c.p.Horizontal {
			return b.left
		}
		return b.bottom
	}
	f := (v - d.Min) / d.Span()
	if c.p.Horizontal {
		return b.left + f*b.width()
	}
	return b.bottom - f*b.height()
}

// baseline is zero clamped into the domain.
func (c *canvas) baseline() float64 {
	d := c.p.Domain
	if d == nil {
		return 0
	}
	return math.Max(d.Min, math.Min(0, d.Max))
}

func (c *canvas) tickLabel(v float64) string {
	if c.p.Expanded {
		return fmt.Sprintf("%.0f%%", v*100)
	}
	return format.Thousands(v)
}

// axes draws grid lines, value ticks and category labels for cartesian charts.
// It returns the center of each category band along the category axis.
func (c *canvas) axes(b box) []float64 {
	n := len(c.p.Categories)
	showGrid := types.Flag(c.p.cfg.ShowGrid, true)

	for _, t := range c.p.Ticks {
		pos := c.valuePos(t, b)
		if c.p.Horizontal {
			if showGrid {
				c.line(pos, b.top, pos, b.bottom, c.gridColor(), 1)
			}
			c.centeredText(c.tickLabel(t), pos, b.bottom+16)
		} else {
			if showGrid {
				c.line(b.left, pos, b.right, pos, c.gridColor(), 1)
			}
			c.rightText(c.tickLabel(t), b.left-6, pos+4)
		}
	}

	if n == 0 {
		return nil
	}

	span := b.width()
	if c.p.Horizontal {
		span = b.height()
	}
	band := span / float64(n)
	if c.p.Type != types.ChartBar && n > 1 {
		band = span / float64(n-1)
	}

	var widest float64
	for _, label := range c.p.Categories {
		widest = math.Max(widest, c.p.fonts.Measure(label))
	}
	every := 1
	if !c.p.Horizontal && band > 0 {
		every = int(math.Ceil((widest + 4) / band))
		if every < 1 {
			every = 1
		}
	}

	centers := make([]float64, n)
	for i, label := range c.p.Categories {
		var pos float64
		switch {
		case c.p.Type == types.ChartBar:
			pos = float64(i)*band + band/2
		case n == 1:
			pos = span / 2
		default:
			pos = float64(i) * band
		}
		if c.p.Horizontal {
			centers[i] = b.top + pos
			c.rightText(label, b.left-6, centers[i]+4)
			continue
		}
		centers[i] = b.left + pos
		if i%every == 0 {
			c.centeredText(label, centers[i], b.bottom+16)
		}
	}
	return centers
}

// segments returns the [start, end] value of each key in row i, stacked and
// normalized as the plan requires.
func (c *canvas) segments(i int, keys []string) [][2]float64 {
	out := make([][2]float64, len(keys))
	var total float64
	if c.p.Expanded {
		for _, k := range keys {
			total += c.p.value(i, k)
		}
	}
	base := c.baseline()
	acc := base
	for j, k := range keys {
		v := c.p.value(i, k)
		if c.p.Expanded && total != 0 {
			v /= total
		}
		if c.p.Stacked {
			out[j] = [2]float64{acc, acc + v}
			acc += v
			continue
		}
		out[j] = [2]float64{base, v}
	}
	return out
}

func (c *canvas) bars() {
	b := c.plot()
	centers := c.axes(b)
	n := len(centers)
	if n == 0 {
		return
	}
	keys := c.p.cfg.YKeys

	span := b.width()
	if c.p.Horizontal {
		span = b.height()
	}
	group := span / float64(n) * 0.8
	barW := group
	if !c.p.Stacked && len(keys) > 0 {
		barW = group / float64(len(keys))
	}
	showLabel := types.Flag(c.p.cfg.BarLabel, false)

	for i, center := range centers {
		segs := c.segments(i, keys)
		for j, k := range keys {
			offset := -group / 2
			if !c.p.Stacked {
				offset += float64(j) * barW
			}
			v0 := c.valuePos(segs[j][0], b)
			v1 := c.valuePos(segs[j][1], b)
			if c.p.Horizontal {
				c.rect(math.Min(v0, v1), center+offset, math.Max(v0, v1), center+offset+barW-1, c.color(k))
				if showLabel {
					c.text(format.Thousands(c.p.value(i, k)), math.Max(v0, v1)+4, center+offset+barW/2+4)
				}
				continue
			}
			c.rect(center+offset, math.Min(v0, v1), center+offset+barW-1, math.Max(v0, v1), c.color(k))
			if showLabel {
				c.centeredText(format.Thousands(c.p.value(i, k)), center+offset+barW/2, math.Min(v0, v1)-4)
			}
		}
	}

	c.overlayLines(b, centers)
}

// overlayLines draws lineKeys that are not bar series on top of the bars.
func (c *canvas) overlayLines(b box, centers []float64) {
	bars := make(map[string]bool, len(c.p.cfg.YKeys))
	for _, k := range c.p.cfg.YKeys {
		bars[k] = true
	}
	for _, k := range c.p.cfg.LineKeys {
		if bars[k] {
			continue
		}
		pts := make([][2]float64, len(centers))
		for i, center := range centers {
			pts[i] = [2]float64{center, c.valuePos(c.p.value(i, k), b)}
		}
		c.polyline(pts, c.color(k), 2)
	}
}

func (c *canvas) lines(filled bool) {
	b := c.plot()
	centers := c.axes(b)
	if len(centers) == 0 {
		return
	}
	keys := c.p.cfg.SeriesKeys()
	stepped := types.Flag(c.p.cfg.Stepped, false)
	dots := types.Flag(c.p.cfg.ShowDots, false)

	tops := make([][][2]float64, len(keys))
	bottoms := make([][][2]float64, len(keys))
	for i, x := range centers {
		segs := c.segments(i, keys)
		for j := range keys {
			tops[j] = append(tops[j], [2]float64{x, c.valuePos(segs[j][1], b)})
			bottoms[j] = append(bottoms[j], [2]float64{x, c.valuePos(segs[j][0], b)})
		}
	}

	for j, k := range keys {
		top := tops[j]
		if stepped {
			top = steps(top)
		}
		col := c.color(k)
		if filled {
			bottom := bottoms[j]
			if stepped {
				bottom = steps(bottom)
			}
			poly := append([][2]float64{}, top...)
			for i := len(bottom) - 1; i >= 0; i-- {
				poly = append(poly, bottom[i])
			}
			c.polygon(poly, col.WithAlpha(102))
		}
		c.polyline(top, col, 2)
		if dots {
			for _, pt := range tops[j] {
				c.dot(pt[0], pt[1], 3, col)
			}
		}
	}
}

// steps converts a polyline into a step-after polyline.
func steps(pts [][2]float64) [][2]float64 {
	if len(pts) < 2 {
		return pts
	}
	out := make([][2]float64, 0, len(pts)*2-1)
	for i, pt := range pts {
		if i > 0 {
			out = append(out, [2]float64{pt[0], pts[i-1][1]})
		}
		out = append(out, pt)
	}
	return out
}

func (c *canvas) center(b box) (cx, cy, radius float64) {
	cx = b.left + b.width()/2
	cy = b.top + b.height()/2
	radius = math.Min(b.width(), b.height())/2 - 4
	if radius < 1 {
		radius = 1
	}
	return cx, cy, radius
}

func (c *canvas) firstKey() string {
	if len(c.p.cfg.YKeys) == 0 {
		return ""
	}
	return c.p.cfg.YKeys[0]
}

// slices returns the value of each pie slice, negatives clamped to zero.
func (c *canvas) slices() ([]float64, float64) {
	key := c.firstKey()
	out := make([]float64, len(c.p.keys))
	var total float64
	for i := range c.p.keys {
		out[i] = math.Max(0, c.p.value(i, key))
		total += out[i]
	}
	return out, total
}

// palette hands plan colors to go-chart's own chart types.
type palette struct {
	bg, text drawing.Color
	series   []drawing.Color
}

func (p palette) BackgroundColor() drawing.Color       { return p.bg }
func (p palette) BackgroundStrokeColor() drawing.Color { return p.bg }
func (p palette) CanvasColor() drawing.Color           { return p.bg }
func (p palette) CanvasStrokeColor() drawing.Color     { return p.bg }
func (p palette) AxisStrokeColor() drawing.Color       { return p.text }
func (p palette) TextColor() drawing.Color             { return p.text }

func (p palette) GetSeriesColor(index int) drawing.Color {
	if len(p.series) == 0 {
		return fallbackColor
	}
	return p.series[index%len(p.series)]
}

// drawPie renders pie and donut charts as go-chart PieChart and DonutChart,
// fitted into the plot box. The center label and the legend are drawn over
// the chart as elements.
func (c *canvas) drawPie(w io.Writer) error {
	f, err := legend.Font()
	if err != nil {
		return fmt.Errorf("render: failed to load font: %w", err)
	}
	p := c.p
	b := c.plot()
	pad := chart.Style{Padding: chart.Box{
		Top:    px(b.top),
		Left:   px(b.left),
		Right:  p.Width - px(b.right),
		Bottom: p.Height - px(b.bottom),
		IsSet:  true,
	}}

	pal := palette{bg: Background(p.Theme), text: c.textColor()}
	showLabels := types.Flag(p.cfg.ShowLabels, false)
	vals, total := c.slices()
	var values []chart.Value
	for i, v := range vals {
		if v == 0 {
			continue
		}
		val := chart.Value{Value: v, Style: chart.Style{FontSize: p.fontSize}}
		if showLabels {
			val.Label = format.Thousands(v)
		}
		values = append(values, val)
		// Zero slices are dropped, so series colors follow the kept slices.
		pal.series = append(pal.series, c.color(p.keys[i]))
	}
	slice := chart.Style{StrokeColor: pal.bg, StrokeWidth: 2}

	donut := types.Flag(p.cfg.Donut, false) || types.Flag(p.cfg.CenterLabel, false)
	centerText := types.Flag(p.cfg.CenterLabel, false) || types.Flag(p.cfg.CenterText, false)
	overlay := func(r chart.Renderer, box chart.Box, _ chart.Style) {
		oc := &canvas{r: r, p: p}
		x, y := box.Center()
		cx, cy := float64(x), float64(y)
		if donut {
			// DonutChart fills its hole with white whatever the theme.
			hole := float64(chart.MinInt(box.Width(), box.Height())>>1) / 1.1 / 3.5
			oc.dot(cx, cy, hole, pal.bg)
		}
		if centerText {
			oc.centeredText(format.Thousands(total), cx, cy+4)
		}
		oc.legend()
	}

	if donut {
		dc := chart.DonutChart{
			Width:        p.Width,
			Height:       p.Height,
			DPI:          legend.DPI,
			Font:         f,
			ColorPalette: pal,
			Background:   pad,
			SliceStyle:   slice,
			Values:       values,
			Elements:     []chart.Renderable{overlay},
		}
		return dc.Render(newRenderer, w)
	}
	pc := chart.PieChart{
		Width:        p.Width,
		Height:       p.Height,
		DPI:          legend.DPI,
		Font:         f,
		ColorPalette: pal,
		Background:   pad,
		SliceStyle:   slice,
		Values:       values,
		Elements:     []chart.Renderable{overlay},
	}
	return pc.Render(newRenderer, w)
}

func (c *canvas) radar() {
	b := c.plot()
	cx, cy, radius := c.center(b)
	n := len(c.p.rows)
	if n == 0 {
		return
	}
	radius -= 16
	if radius < 1 {
		radius = 1
	}

	angle := func(i int) float64 { return 2*math.Pi*float64(i)/float64(n) - math.Pi/2 }
	point := func(i int, r float64) [2]float64 {
		return [2]float64{cx + r*math.Cos(angle(i)), cy + r*math.Sin(angle(i))}
	}

	if types.Flag(c.p.cfg.ShowGrid, true) {
		for ring := 1; ring <= 4; ring++ {
			r := radius * float64(ring) / 4
			pts := make([][2]float64, 0, n+1)
			for i := 0; i <= n; i++ {
				pts = append(pts, point(i%n, r))
			}
			c.polyline(pts, c.gridColor(), 1)
		}
		for i := 0; i < n; i++ {
			end := point(i, radius)
			c.line(cx, cy, end[0], end[1], c.gridColor(), 1)
		}
	}

	for i, label := range c.p.Categories {
		pt := point(i, radius+10)
		c.centeredText(label, pt[0], pt[1]+4)
	}

	d := c.p.Domain
	for j, k := range c.p.keys {
		pts := make([][2]float64, n)
		for i := 0; i < n; i++ {
			f := 0.0
			if d != nil && d.Max > 0 {
				f = math.Max(0, c.p.value(i, k)) / d.Max
			}
			pts[i] = point(i, f*radius)
		}
		col := c.color(k)
		alpha := uint8(153)
		if j > 0 {
			alpha = 102
		}
		c.polygon(pts, col.WithAlpha(alpha))
		c.polyline(append(pts, pts[0]), col, 2)
		if types.Flag(c.p.cfg.ShowDots, false) {
			for _, pt := range pts {
				c.dot(pt[0], pt[1], 3, col)
			}
		}
	}
}

func (c *canvas) radial() {
	b := c.plot()
	cx, cy, radius := c.center(b)
	n := len(c.p.rows)
	if n == 0 {
		return
	}
	key := c.firstKey()

	peak := 0.0
	if c.p.Domain != nil {
		peak = c.p.Domain.Max
	}
	inner := radius * 0.3
	ring := (radius - inner) / float64(n)
	track := c.gridColor().WithAlpha(96)

	for i, slice := range c.p.keys {
		r := inner + ring*(float64(i)+0.5)
		frac := 0.0
		if peak > 0 {
			frac = math.Min(1, math.Max(0, c.p.value(i, key))/peak)
		}

		c.r.ResetStyle()
		c.r.SetStrokeColor(track)
		c.r.SetStrokeWidth(ring * 0.7)
		c.r.Circle(r, px(cx), px(cy))

		if frac == 0 {
			continue
		}
		c.r.ResetStyle()
		c.r.SetStrokeColor(c.color(slice))
		c.r.SetStrokeWidth(ring * 0.7)
		if frac >= 1 {
			c.r.Circle(r, px(cx), px(cy))
			continue
		}
		c.r.ArcTo(px(cx), px(cy), r, r, 0, frac*2*math.Pi)
		c.r.Stroke()
	}

	if types.Flag(c.p.cfg.CenterLabel, false) || types.Flag(c.p.cfg.CenterText, false) {
		var total float64
		for i := range c.p.rows {
			total += c.p.value(i, key)
		}
		c.centeredText(format.Thousands(total), cx, cy+4)
	}
}

func (c *canvas) legend() {
	if c.p.Legend == nil {
		return
	}
	swatch := c.p.swatch
	for _, it := range c.p.Legend.Items {
		c.rect(it.SwatchX, it.SwatchY, it.SwatchX+swatch, it.SwatchY+swatch, c.color(it.Key))
		c.text(it.Label, it.TextX, it.TextY)
	}
}

func px(v float64) int { return int(math.Round(v)) }
