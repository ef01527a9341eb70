package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chartsmith/chartsmith/pkg/types"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}`)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// InferKind classifies raw cell text. Blank text is a string; text that
// parses as a finite number is a number; text that contains a recognizable
// date and parses as one is a date.
func InferKind(raw string) types.ValueKind {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.KindString
	}
	if _, ok := parseNumber(s); ok {
		return types.KindNumber
	}
	if _, ok := parseDate(s); ok {
		return types.KindDate
	}
	return types.KindString
}

// Coerce converts raw cell text to a value of its inferred kind.
func Coerce(raw string) types.Value {
	s := strings.TrimSpace(raw)
	switch InferKind(raw) {
	case types.KindNumber:
		f, _ := parseNumber(s)
		return types.Number(f)
	case types.KindDate:
		t, _ := parseDate(s)
		return types.Date(t)
	default:
		return types.String(raw)
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
