package legend

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2/roboto"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DPI is the resolution text is measured and drawn at. At 72 DPI a point is
// a pixel, so a font size means the same thing to the measurer and the SVG.
const DPI = 72

// Measurer returns the rendered width of text in pixels.
type Measurer interface {
	Measure(text string) float64
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(text string) float64

// Measure calls f.
func (f MeasureFunc) Measure(text string) float64 { return f(text) }

var (
	fontOnce sync.Once
	roboFont *truetype.Font
	fontErr  error
)

// Font returns the parsed Roboto Medium face embedded in go-chart. Rendered
// text is set in it, and the default measurer measures with it.
func Font() (*truetype.Font, error) {
	fontOnce.Do(func() {
		roboFont, fontErr = truetype.Parse(roboto.Roboto)
	})
	return roboFont, fontErr
}

// FaceMeasurer measures text with a face scaled to a target font size.
// Widths depend only on the text, so layout is identical wherever it is
// computed. A FaceMeasurer is not safe for concurrent use.
type FaceMeasurer struct {
	Face     font.Face
	FaceSize float64
	Size     float64
}

// NewFaceMeasurer measures with Font at size points and DPI. If the font
// cannot be parsed it falls back to basicfont.Face7x13 scaled to size.
func NewFaceMeasurer(size float64) *FaceMeasurer {
	f, err := Font()
	if err != nil {
		return &FaceMeasurer{Face: basicfont.Face7x13, FaceSize: 13, Size: size}
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: DPI})
	return &FaceMeasurer{Face: face, FaceSize: size, Size: size}
}

// Measure implements Measurer.
func (m *FaceMeasurer) Measure(text string) float64 {
	adv := font.MeasureString(m.Face, text)
	px := float64(adv) / 64
	return px * m.Size / m.FaceSize
}
