// Package colors assigns deterministic series colors from a themed palette.
package colors

import "github.com/chartsmith/chartsmith/pkg/types"

// PaletteSize is the number of slots: one primary plus five secondary shades.
const PaletteSize = 6

// Palette maps slot index to a concrete color value.
type Palette [PaletteSize]string

var (
	lightPalette = Palette{
		"#18181b", // primary
		"#e76e50", // chart-1
		"#2a9d90", // chart-2
		"#274754", // chart-3
		"#e8c468", // chart-4
		"#f4a462", // chart-5
	}
	darkPalette = Palette{
		"#fafafa",
		"#2662d9",
		"#2eb88a",
		"#e88c30",
		"#af57db",
		"#e23670",
	}
)

// For returns the palette for a theme. Unknown and system themes use light.
func For(theme types.Theme) Palette {
	if theme.Resolve() == types.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// Slot returns the color at slot i, wrapping past the end of the palette.
func (p Palette) Slot(i int) string {
	if i < 0 {
		i = -i
	}
	return p[i%PaletteSize]
}

// Theme text and grid colors used by the renderer.
const (
	TextLight = "#222222"
	TextDark  = "#EEEEEE"
	GridLight = "#cccccc"
	GridDark  = "#313131"
)

// TextColor returns the axis and legend text color for a theme.
func TextColor(theme types.Theme) string {
	if theme.Resolve() == types.ThemeDark {
		return TextDark
	}
	return TextLight
}

// GridColor returns the grid line color for a theme.
func GridColor(theme types.Theme) string {
	if theme.Resolve() == types.ThemeDark {
		return GridDark
	}
	return GridLight
}
