// Package types defines the chart data model shared by the store, the
// render pipeline and the HTTP API.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueKind discriminates the three cell types a dataset row may hold.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindNumber
	KindDate
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one dataset cell. Dates are held as RFC 3339 text in Str so that a
// Value is a plain comparable struct with only exported fields.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

// String constructs a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number constructs a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Date constructs a date value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Str: t.UTC().Format(time.RFC3339)} }

// Float returns the numeric payload. ok is false for non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Time returns the date payload. ok is false for non-date values.
func (v Value) Time() (t time.Time, ok bool) {
	if v.Kind != KindDate {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v.Str)
	return t, err == nil
}

// Text returns the value as display text, the way it appears in a grid cell.
func (v Value) Text() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// MarshalJSON encodes strings and dates as JSON strings and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil, ErrNonFiniteNumber
		}
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts a JSON string or number. JSON strings decode as
// strings so that a stored dataset round-trips unchanged.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrUnsupportedValue
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", data, err)
		}
		*v = Number(f)
		return nil
	default:
		return ErrUnsupportedValue
	}
}

// Row maps field keys to values. Rows may be sparse.
type Row map[string]Value

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ChartField is one logical dataset column.
type ChartField struct {
	Key            string `json:"key"`
	Label          string `json:"label,omitempty"`
	SecondaryLabel string `json:"secondaryLabel,omitempty"`
}

// DisplayLabel returns the label, falling back to the key.
func (f ChartField) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// Dataset is an ordered list of fields and an ordered list of rows.
// Row order drives category axis order.
type Dataset struct {
	Fields []ChartField `json:"fields"`
	Rows   []Row        `json:"rows"`
}

// Field looks up a field by key.
func (d Dataset) Field(key string) (ChartField, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return ChartField{}, false
}

// HasField reports whether key names a field.
func (d Dataset) HasField(key string) bool {
	_, ok := d.Field(key)
	return ok
}

// Label returns the display label for key, or key itself when unknown.
func (d Dataset) Label(key string) string {
	if f, ok := d.Field(key); ok {
		return f.DisplayLabel()
	}
	return key
}

// Keys returns the field keys in display order.
func (d Dataset) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Fields: append([]ChartField(nil), d.Fields...),
		Rows:   make([]Row, len(d.Rows)),
	}
	if d.Fields == nil {
		out.Fields = nil
	}
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}
	if d.Rows == nil {
		out.Rows = nil
	}
	return out
}
