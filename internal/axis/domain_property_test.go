package axis

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_DomainBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	samplesGen := gen.SliceOfN(8, gen.Float64Range(-50000, 50000))

	properties.Property("domain contains every sample with headroom above the max", prop.ForAll(
		func(samples []float64) bool {
			d := FromSamples(samples)
			hi := math.Inf(-1)
			for _, s := range samples {
				if s < d.Min || s > d.Max {
					return false
				}
				hi = math.Max(hi, s)
			}
			return d.Max-hi >= Increment(hi)-1e-9
		},
		samplesGen,
	))

	properties.Property("bounds are multiples of the increment", prop.ForAll(
		func(samples []float64) bool {
			d := FromSamples(samples)
			hi := math.Inf(-1)
			for _, s := range samples {
				hi = math.Max(hi, s)
			}
			inc := Increment(hi)
			return math.Mod(d.Min, inc) == 0 && math.Mod(d.Max, inc) == 0
		},
		samplesGen,
	))

	properties.Property("non-negative small samples start at zero", prop.ForAll(
		func(samples []float64) bool {
			return FromSamples(samples).Min == 0
		},
		gen.SliceOfN(5, gen.Float64Range(0, 20)),
	))

	properties.TestingRun(t)
}
