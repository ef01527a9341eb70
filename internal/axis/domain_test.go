package axis

import (
	"testing"

	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/stretchr/testify/assert"
)

func rows(key string, vals ...float64) []types.Row {
	out := make([]types.Row, len(vals))
	for i, v := range vals {
		out[i] = types.Row{key: types.Number(v)}
	}
	return out
}

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, Domain{0, 100}, Compute(nil, []string{"a"}))
	assert.Equal(t, Domain{0, 100}, Compute(rows("a", 1, 2), nil))
	assert.Equal(t, Domain{0, 100}, Compute(rows("a", 1, 2), []string{"missing"}))
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want Domain
	}{
		{"small positive", []float64{10, 20, 95}, Domain{0, 110}},
		{"exact multiple still padded", []float64{10, 100}, Domain{0, 110}},
		{"all negative", []float64{-50, -10}, Domain{-50, 0}},
		{"negative floor", []float64{-55, 40}, Domain{-60, 50}},
		{"min above twice increment", []float64{25, 60}, Domain{20, 70}},
		{"hundreds", []float64{186, 305, 73}, Domain{0, 400}},
		{"thousands", []float64{1250, 1700}, Domain{1200, 1800}},
		{"large", []float64{12500}, Domain{12000, 14000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(rows("v", tt.vals...), []string{"v"}))
		})
	}
}

func TestCompute_SkipsNonNumeric(t *testing.T) {
	rs := []types.Row{
		{"v": types.String("12")},
		{"v": types.Number(15)},
		{"w": types.Number(1000)},
	}
	assert.Equal(t, Domain{0, 30}, Compute(rs, []string{"v"}))
}

func TestComputeStacked(t *testing.T) {
	rs := []types.Row{
		{"a": types.Number(186), "b": types.Number(80)},
		{"a": types.Number(305), "b": types.Number(200)},
	}
	assert.Equal(t, Domain{250, 600}, ComputeStacked(rs, []string{"a", "b"}))
}

func TestIncrement(t *testing.T) {
	assert.Equal(t, 10.0, Increment(100))
	assert.Equal(t, 50.0, Increment(101))
	assert.Equal(t, 50.0, Increment(1000))
	assert.Equal(t, 100.0, Increment(10000))
	assert.Equal(t, 1000.0, Increment(10001))
	assert.Equal(t, 10.0, Increment(-500))
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50}, Domain{0, 50}.Ticks(10))
	assert.Equal(t, []float64{0, 20, 40, 60, 80, 100, 120}, Domain{0, 120}.Ticks(7))
	assert.Equal(t, []float64{-50, -40, -30, -20, -10, 0}, Domain{-50, 0}.Ticks(6))
	assert.Equal(t, []float64{5, 5}, Domain{5, 5}.Ticks(4))
}
