// Package dataset implements the grid editing operations on a dataset.
// Every operation returns a new dataset and leaves its input untouched.
package dataset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chartsmith/chartsmith/pkg/types"
)

var (
	// ErrRowOutOfRange is returned for a row index outside the dataset.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrUnknownField is returned when a key does not name a field.
	ErrUnknownField = errors.New("unknown field")

	// ErrDuplicateField is returned when a rename would collide with an existing key.
	ErrDuplicateField = errors.New("field key already exists")

	// ErrEmptyKey is returned when a new key is blank.
	ErrEmptyKey = errors.New("field key is empty")
)

// AddRow appends a row holding an empty string for every field.
func AddRow(ds types.Dataset) types.Dataset {
	out := ds.Clone()
	row := make(types.Row, len(out.Fields))
	for _, f := range out.Fields {
		row[f.Key] = types.String("")
	}
	out.Rows = append(out.Rows, row)
	return out
}

// RemoveRow deletes the row at index i.
func RemoveRow(ds types.Dataset, i int) (types.Dataset, error) {
	if i < 0 || i >= len(ds.Rows) {
		return types.Dataset{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	out := ds.Clone()
	out.Rows = append(out.Rows[:i], out.Rows[i+1:]...)
	return out, nil
}

// AddColumn appends a field named column_N / "Column N", where N is one past
// the current field count, bumped until the key is unused. Existing rows get
// an empty string under the new key.
func AddColumn(ds types.Dataset) (types.Dataset, types.ChartField) {
	out := ds.Clone()
	n := len(out.Fields) + 1
	for out.HasField("column_" + strconv.Itoa(n)) {
		n++
	}
	f := types.ChartField{Key: "column_" + strconv.Itoa(n), Label: "Column " + strconv.Itoa(n)}
	out.Fields = append(out.Fields, f)
	for _, r := range out.Rows {
		r[f.Key] = types.String("")
	}
	return out, f
}

// SetLabel changes the display label of a field.
func SetLabel(ds types.Dataset, key, label string) (types.Dataset, error) {
	i := fieldIndex(ds, key)
	if i < 0 {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	out := ds.Clone()
	out.Fields[i].Label = label
	return out, nil
}

// SetCell writes v at row i under key.
func SetCell(ds types.Dataset, i int, key string, v types.Value) (types.Dataset, error) {
	if i < 0 || i >= len(ds.Rows) {
		return types.Dataset{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	if !ds.HasField(key) {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	out := ds.Clone()
	if out.Rows[i] == nil {
		out.Rows[i] = types.Row{}
	}
	out.Rows[i][key] = v
	return out, nil
}

// RenameKey changes a field key and rewrites every row that uses it.
func RenameKey(ds types.Dataset, oldKey, newKey string) (types.Dataset, error) {
	if newKey == "" {
		return types.Dataset{}, ErrEmptyKey
	}
	i := fieldIndex(ds, oldKey)
	if i < 0 {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownField, oldKey)
	}
	if oldKey == newKey {
		return ds.Clone(), nil
	}
	if ds.HasField(newKey) {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrDuplicateField, newKey)
	}
	out := ds.Clone()
	out.Fields[i].Key = newKey
	for _, r := range out.Rows {
		if v, ok := r[oldKey]; ok {
			r[newKey] = v
			delete(r, oldKey)
		}
	}
	return out, nil
}

// RemoveField deletes a field and its values from every row.
func RemoveField(ds types.Dataset, key string) (types.Dataset, error) {
	i := fieldIndex(ds, key)
	if i < 0 {
		return types.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	out := ds.Clone()
	out.Fields = append(out.Fields[:i], out.Fields[i+1:]...)
	for _, r := range out.Rows {
		delete(r, key)
	}
	return out, nil
}

func fieldIndex(ds types.Dataset, key string) int {
	for i, f := range ds.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}
