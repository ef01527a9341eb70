package legend

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_LegendLayout(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	m := NewFaceMeasurer(12)

	properties.Property("item widths plus gaps sum to total width", prop.ForAll(
		func(keys []string, width float64) bool {
			l := Compute(Input{Keys: keys, Width: width, Height: 400}, m, DefaultOptions)
			if len(keys) == 0 {
				return len(l.Items) == 0
			}
			var sum float64
			for _, it := range l.Items {
				sum += it.Width
			}
			sum += float64(len(keys)-1) * DefaultOptions.ItemGap
			return math.Abs(sum-l.TotalWidth) < 1e-6
		},
		gen.SliceOf(gen.AlphaString()), gen.Float64Range(100, 2000),
	))

	properties.Property("a legend that fits is centered inside the container", prop.ForAll(
		func(keys []string, width float64) bool {
			l := Compute(Input{Keys: keys, Width: width, Height: 400}, m, DefaultOptions)
			if l.TotalWidth > width {
				return true
			}
			left := l.StartX
			right := width - (l.StartX + l.TotalWidth)
			return left >= -1e-9 && math.Abs(left-right) < 1e-6
		},
		gen.SliceOf(gen.AlphaString()), gen.Float64Range(100, 2000),
	))

	properties.Property("items advance left to right", prop.ForAll(
		func(keys []string) bool {
			l := Compute(Input{Keys: keys, Width: 600, Height: 400}, m, DefaultOptions)
			for i := 1; i < len(l.Items); i++ {
				if l.Items[i].X <= l.Items[i-1].X {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
