// Package format turns raw dataset values into axis and tooltip text.
package format

import (
	"math"
	"regexp"
	"time"

	"github.com/chartsmith/chartsmith/pkg/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

const (
	axisDateLayout    = "Jan 2"
	tooltipDateLayout = "January 2, 2006"
)

// printer is safe for concurrent use once constructed.
var printer = message.NewPrinter(language.English)

// parseDate extracts a calendar date from a date value or an ISO-prefixed
// string. ok is false when the value is not date-like or does not parse.
func parseDate(v types.Value) (time.Time, bool) {
	switch v.Kind {
	case types.KindDate:
		return v.Time()
	case types.KindString:
		if !isoDatePrefix.MatchString(v.Str) {
			return time.Time{}, false
		}
		t, err := time.Parse("2006-01-02", v.Str[:10])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// AxisTick formats a category value for an axis tick. Dates become
// "Apr 5"; everything else passes through.
func AxisTick(v types.Value) string {
	if t, ok := parseDate(v); ok {
		return t.Format(axisDateLayout)
	}
	return v.Text()
}

// TooltipDate formats a category value for a tooltip heading. Dates become
// "April 5, 2024"; everything else passes through.
func TooltipDate(v types.Value) string {
	if t, ok := parseDate(v); ok {
		return t.Format(tooltipDateLayout)
	}
	return v.Text()
}

// Thousands renders a number with English digit grouping. Integral values
// print without decimals, others with two.
func Thousands(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return printer.Sprint(f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return printer.Sprintf("%d", int64(f))
	}
	return printer.Sprintf("%.2f", f)
}

// WithUnit renders a value with grouping and a unit suffix. Non-numeric
// values pass through without the unit.
func WithUnit(v types.Value, unit string) string {
	f, ok := v.Float()
	if !ok {
		return v.Text()
	}
	if unit == "" {
		return Thousands(f)
	}
	return Thousands(f) + " " + unit
}
