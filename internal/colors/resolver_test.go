package colors

import (
	"testing"

	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestAssign(t *testing.T) {
	series := Assign([]string{"desktop", "mobile", "a", "b", "c", "d", "e"})

	assert.Equal(t, RolePrimary, series[0].Role)
	assert.Equal(t, 0, series[0].Slot)
	for i, s := range series[1:] {
		assert.Equal(t, RoleSecondary, s.Role, s.Key)
		assert.Equal(t, 1+i%(PaletteSize-1), s.Slot, s.Key)
	}
	// sixth secondary wraps back to chart-1
	assert.Equal(t, 1, series[6].Slot)
}

func TestResolve_EmptyKeys(t *testing.T) {
	got := ResolveKeys(nil, map[string]string{"x": "red"}, types.ThemeLight, types.ColorNormal)
	assert.Empty(t, got)
}

func TestResolve_Priority(t *testing.T) {
	keys := []string{"desktop", "mobile", "other"}
	custom := map[string]string{"other": "not-a-color"}

	got := ResolveKeys(keys, custom, types.ThemeLight, types.ColorNormal)
	assert.Equal(t, lightPalette[0], got["desktop"])
	assert.Equal(t, lightPalette[1], got["mobile"])
	assert.Equal(t, "not-a-color", got["other"])

	demo := ResolveKeys(keys, custom, types.ThemeLight, types.ColorTooltipDemo)
	assert.Equal(t, lightPalette[1], demo["desktop"])
	assert.Equal(t, lightPalette[2], demo["mobile"])
	assert.Equal(t, "not-a-color", demo["other"])
}

func TestResolve_ThemeChangesValuesNotSlots(t *testing.T) {
	keys := []string{"a", "b", "c"}
	light := ResolveKeys(keys, nil, types.ThemeLight, types.ColorNormal)
	dark := ResolveKeys(keys, nil, types.ThemeDark, types.ColorNormal)

	for i, k := range keys {
		assert.Equal(t, lightPalette[i], light[k])
		assert.Equal(t, darkPalette[i], dark[k])
	}
}

func TestResolve_DuplicateKeys(t *testing.T) {
	got := ResolveKeys([]string{"a", "a"}, nil, types.ThemeLight, types.ColorNormal)
	assert.Len(t, got, 1)
	assert.Equal(t, lightPalette[1], got["a"])
}

func TestThemeColors(t *testing.T) {
	assert.Equal(t, "#222222", TextColor(types.ThemeLight))
	assert.Equal(t, "#EEEEEE", TextColor(types.ThemeDark))
	assert.Equal(t, "#cccccc", GridColor(types.ThemeSystem))
	assert.Equal(t, "#313131", GridColor(types.ThemeDark))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		ok      bool
	}{
		{"#e76e50", 0xe7, 0x6e, 0x50, true},
		{"#fff", 255, 255, 255, true},
		{"rgb(1, 2, 3)", 1, 2, 3, true},
		{"hsl(12, 76%, 61%)", 0xe7, 0x6e, 0x50, true},
		{"hsl(173 58% 39%)", 0x2a, 0x9d, 0x90, true},
		{"hsl(var(--chart-1))", 0, 0, 0, false},
		{"banana", 0, 0, 0, false},
	}

	for _, tt := range tests {
		c, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, [3]uint8{tt.r, tt.g, tt.b}, [3]uint8{c.R, c.G, c.B}, tt.in)
			assert.Equal(t, uint8(255), c.A, tt.in)
		}
	}
}
