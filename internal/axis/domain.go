// Package axis computes rounded numeric axis domains.
package axis

import (
	"math"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// DefaultDomain is returned when no numeric samples exist.
var DefaultDomain = Domain{Min: 0, Max: 100}

// Domain is the numeric range an axis is scaled to.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (d Domain) Span() float64 { return d.Max - d.Min }

// Increment picks the rounding step for a sample maximum.
func Increment(sampleMax float64) float64 {
	switch {
	case sampleMax <= 100:
		return 10
	case sampleMax <= 1000:
		return 50
	case sampleMax <= 10000:
		return 100
	default:
		return 1000
	}
}

// Compute returns the domain for every numeric value under seriesKeys.
// Non-numeric and missing values are skipped.
func Compute(rows []types.Row, seriesKeys []string) Domain {
	var samples []float64
	for _, row := range rows {
		for _, k := range seriesKeys {
			if f, ok := row[k].Float(); ok {
				samples = append(samples, f)
			}
		}
	}
	return FromSamples(samples)
}

// ComputeStacked is Compute over the per-row sum of seriesKeys, used when
// series are stacked on top of each other.
func ComputeStacked(rows []types.Row, seriesKeys []string) Domain {
	var samples []float64
	for _, row := range rows {
		var sum float64
		var seen bool
		for _, k := range seriesKeys {
			if f, ok := row[k].Float(); ok {
				sum += f
				seen = true
			}
		}
		if seen {
			samples = append(samples, sum)
		}
	}
	return FromSamples(samples)
}

// FromSamples applies the rounding rules to raw samples.
func FromSamples(samples []float64) Domain {
	if len(samples) == 0 {
		return DefaultDomain
	}

	lo, hi := samples[0], samples[0]
	for _, s := range samples[1:] {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}

	inc := Increment(hi)

	var min float64
	switch {
	case lo < 0:
		min = math.Floor(lo/inc) * inc
	case lo > 2*inc:
		min = math.Floor(lo/inc) * inc
	default:
		min = 0
	}

	max := math.Ceil(hi/inc)*inc + inc

	return Domain{Min: min, Max: max}
}

// Ticks returns evenly spaced tick values from Min up to Max. The step is the
// smallest 1, 2 or 5 times a power of ten that yields at most maxTicks values.
func (d Domain) Ticks(maxTicks int) []float64 {
	if maxTicks < 2 || d.Span() <= 0 {
		return []float64{d.Min, d.Max}
	}
	step := niceStep(d.Span(), maxTicks)
	var ticks []float64
	for i := 0; ; i++ {
		v := d.Min + float64(i)*step
		if v > d.Max+step*1e-9 {
			break
		}
		ticks = append(ticks, v)
	}
	return ticks
}

func niceStep(span float64, maxTicks int) float64 {
	pow := math.Pow(10, math.Floor(math.Log10(span/float64(maxTicks))))
	for {
		for _, m := range []float64{1, 2, 5} {
			step := m * pow
			if span/step+1 <= float64(maxTicks) {
				return step
			}
		}
		pow *= 10
	}
}
