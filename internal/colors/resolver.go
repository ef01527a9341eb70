package colors

import "github.com/chartsmith/chartsmith/pkg/types"

// SeriesRole tags a series as the chart's primary series or a secondary one.
type SeriesRole uint8

const (
	RoleSecondary SeriesRole = iota
	RolePrimary
)

// String returns the role name.
func (r SeriesRole) String() string {
	if r == RolePrimary {
		return "primary"
	}
	return "secondary"
}

// MarshalText encodes the role by name.
func (r SeriesRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Series is a series key with an explicit role and palette slot.
type Series struct {
	Key  string     `json:"key"`
	Role SeriesRole `json:"role"`
	Slot int        `json:"slot"`
}

// Assign tags keys with roles and slots. The first key is primary and takes
// slot 0. Secondary keys cycle through slots 1..PaletteSize-1 in order.
func Assign(keys []string) []Series {
	out := make([]Series, len(keys))
	for i, k := range keys {
		if i == 0 {
			out[i] = Series{Key: k, Role: RolePrimary, Slot: 0}
			continue
		}
		out[i] = Series{Key: k, Role: RoleSecondary, Slot: 1 + (i-1)%(PaletteSize-1)}
	}
	return out
}

// demoSlots are the fixed slots used by the tooltip demo variant.
var demoSlots = map[string]int{
	"desktop": 1,
	"mobile":  2,
	"tablet":  3,
}

// Resolve maps each series to a color value. Priority per series: explicit
// custom entry, then the demo slot when variant is tooltip-demo, then the
// series' own slot. Custom values are passed through uninterpreted.
func Resolve(series []Series, custom map[string]string, theme types.Theme, variant types.ColorVariant) map[string]string {
	palette := For(theme)
	out := make(map[string]string, len(series))
	for _, s := range series {
		if c, ok := custom[s.Key]; ok {
			out[s.Key] = c
			continue
		}
		if variant == types.ColorTooltipDemo {
			if slot, ok := demoSlots[s.Key]; ok {
				out[s.Key] = palette.Slot(slot)
				continue
			}
		}
		out[s.Key] = palette.Slot(s.Slot)
	}
	return out
}

// ResolveKeys is Assign followed by Resolve.
func ResolveKeys(keys []string, custom map[string]string, theme types.Theme, variant types.ColorVariant) map[string]string {
	return Resolve(Assign(keys), custom, theme, variant)
}
