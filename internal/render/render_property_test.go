package render

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/chartsmith/chartsmith/pkg/types"
)

func datasetOf(values []float64) types.Dataset {
	ds := types.Dataset{Fields: []types.ChartField{{Key: "x"}, {Key: "a"}, {Key: "b"}}}
	for i, v := range values {
		ds.Rows = append(ds.Rows, types.Row{
			"x": types.String(fmt.Sprintf("c%d", i)),
			"a": types.Number(v),
			"b": types.Number(v / 2),
		})
	}
	return ds
}

func TestProperty_Render(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("rendering is deterministic and never falls back for valid types", prop.ForAll(
		func(values []float64, typeIndex int) bool {
			cfg := types.ChartConfig{
				Type:  types.ChartTypes[typeIndex],
				XKey:  "x",
				YKeys: []string{"a", "b"},
			}
			ds := datasetOf(values)
			first := Render(cfg, ds, Options{})
			second := Render(cfg, ds, Options{})
			return first.Err == nil && bytes.Equal(first.SVG, second.SVG)
		},
		gen.SliceOfN(12, gen.Float64Range(-1e6, 1e6)),
		gen.IntRange(0, len(types.ChartTypes)-1),
	))

	properties.Property("first series always takes the primary color", prop.ForAll(
		func(values []float64) bool {
			cfg := types.ChartConfig{Type: types.ChartLine, XKey: "x", YKeys: []string{"b", "a"}}
			p, err := Build(cfg, datasetOf(values), Options{})
			if err != nil {
				return false
			}
			return p.Series[0].Key == "b" && p.Series[0].Slot == 0
		},
		gen.SliceOf(gen.Float64Range(0, 1000)),
	))

	properties.TestingRun(t)
}
