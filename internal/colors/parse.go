package colors

import (
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Parse converts a CSS color string to a drawing color. It understands
// #rgb, #rrggbb, rgb(), rgba() and hsl() in both comma and space syntax.
// ok is false for anything else.
func Parse(s string) (c drawing.Color, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		args, ok := fnArgs(s)
		if !ok || len(args) < 3 {
			return drawing.Color{}, false
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(strings.TrimSuffix(args[i], "%"), 64)
			if err != nil {
				return drawing.Color{}, false
			}
			if strings.HasSuffix(args[i], "%") {
				f = f * 255 / 100
			}
			rgb[i] = clamp8(f)
		}
		return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha(args)}, true
	case strings.HasPrefix(s, "hsla(") || strings.HasPrefix(s, "hsl("):
		args, ok := fnArgs(s)
		if !ok || len(args) < 3 {
			return drawing.Color{}, false
		}
		h, err1 := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		sat, err2 := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
		l, err3 := strconv.ParseFloat(strings.TrimSuffix(args[2], "%"), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return drawing.Color{}, false
		}
		r, g, b := hslToRGB(h, sat/100, l/100)
		return drawing.Color{R: r, G: g, B: b, A: alpha(args)}, true
	}
	return drawing.Color{}, false
}

// MustParse is Parse with a fallback color for unparseable input.
func MustParse(s string, fallback drawing.Color) drawing.Color {
	if c, ok := Parse(s); ok {
		return c
	}
	return fallback
}

func parseHex(h string) (drawing.Color, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return drawing.Color{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return drawing.Color{}, false
	}
	if len(h) == 6 {
		return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	return drawing.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// fnArgs splits "fn(a, b, c / d)" into its arguments.
func fnArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	body := s[open+1 : len(s)-1]
	body = strings.NewReplacer(",", " ", "/", " ").Replace(body)
	return strings.Fields(body), true
}

func alpha(args []string) uint8 {
	if len(args) < 4 {
		return 255
	}
	a := args[3]
	f, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
	if err != nil {
		return 255
	}
	if strings.HasSuffix(a, "%") {
		f /= 100
	}
	return clamp8(f * 255)
}

func clamp8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return clamp8((r + m) * 255), clamp8((g + m) * 255), clamp8((b + m) * 255)
}
