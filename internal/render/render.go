package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/chartsmith/chartsmith/internal/colors"
	"github.com/chartsmith/chartsmith/internal/legend"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// ContentType is the media type of rendered charts.
const ContentType = "image/svg+xml"

var placeholderBorder = drawing.Color{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}

// Output is the result of a fail-soft render.
type Output struct {
	// SVG is always a complete document: the chart, or a placeholder.
	SVG []byte
	// Plan is nil when planning failed.
	Plan *Plan
	// Err is the failure drawn into the placeholder, if any.
	Err error
}

// Failed reports whether SVG holds a placeholder.
func (o Output) Failed() bool { return o.Err != nil }

// Render plans and draws a chart. It never fails: planning errors, drawing
// errors and panics all yield an inline placeholder of the chart's size.
func Render(cfg types.ChartConfig, ds types.Dataset, opts Options) (out Output) {
	width, height := cfg.Dimensions()
	if cfg.Size == nil && opts.Width > 0 && opts.Height > 0 {
		width, height = opts.Width, opts.Height
	}
	theme := cfg.Theme
	if opts.Theme != "" {
		theme = opts.Theme
	}

	defer func() {
		if rec := recover(); rec != nil {
			out.Err = fmt.Errorf("render: panic: %v", rec)
			out.SVG = Placeholder(width, height, theme, out.Err.Error())
		}
	}()

	plan, err := Build(cfg, ds, opts)
	if err != nil {
		return Output{SVG: Placeholder(width, height, theme, err.Error()), Err: err}
	}
	data, err := Draw(plan)
	if err != nil {
		return Output{SVG: Placeholder(plan.Width, plan.Height, plan.Theme, err.Error()), Plan: plan, Err: err}
	}
	return Output{SVG: data, Plan: plan}
}

// Placeholder draws a bordered box with an error message.
func Placeholder(width, height int, theme types.Theme, message string) []byte {
	if width <= 0 {
		width = types.DefaultWidth
	}
	if height <= 0 {
		height = types.DefaultHeight
	}
	if data, err := drawPlaceholder(width, height, theme, message); err == nil {
		return data
	}
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="8" y="20">%s</text></svg>`,
		width, height, html.EscapeString(message)))
}

func drawPlaceholder(width, height int, theme types.Theme, message string) ([]byte, error) {
	r, err := newRenderer(width, height)
	if err != nil {
		return nil, err
	}
	size := legend.DefaultOptions.FontSize
	p := &Plan{Width: width, Height: height, Theme: theme.Resolve(), fonts: legend.NewFaceMeasurer(size), fontSize: size}
	p.TextColor = colors.TextColor(p.Theme)
	c := &canvas{r: r, p: p}

	w, h := float64(width), float64(height)
	c.rect(0, 0, w, h, Background(p.Theme))

	r.ResetStyle()
	r.SetStrokeColor(placeholderBorder)
	r.SetStrokeWidth(2)
	r.SetStrokeDashArray([]float64{6, 4})
	r.MoveTo(4, 4)
	r.LineTo(width-4, 4)
	r.LineTo(width-4, height-4)
	r.LineTo(4, height-4)
	r.Close()
	r.Stroke()

	msg := "Unable to render chart"
	c.centeredText(msg, w/2, h/2-8)
	c.centeredText(truncate(strings.TrimPrefix(message, "render: "), 80), w/2, h/2+12)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, err
	}
	return sized(buf.Bytes(), width, height), nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
