package validation

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
)

// walker accumulates issues while descending a decoded JSON document.
type walker struct {
	issues []cserrors.Issue
}

func (w *walker) add(path []string, msg string) {
	w.issues = append(w.issues, cserrors.Issue{Path: strings.Join(path, "."), Message: msg})
}

func join(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func index(path []string, i int) []string {
	return join(path, strconv.Itoa(i))
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}

func (w *walker) object(path []string, v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		w.add(path, "expected object, received "+kindOf(v))
	}
	return m, ok
}

func (w *walker) array(path []string, v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	if !ok {
		w.add(path, "expected array, received "+kindOf(v))
	}
	return a, ok
}

func (w *walker) str(path []string, v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		w.add(path, "expected string, received "+kindOf(v))
	}
	return s, ok
}

func (w *walker) boolean(path []string, v interface{}) {
	if _, ok := v.(bool); !ok {
		w.add(path, "expected boolean, received "+kindOf(v))
	}
}

func (w *walker) number(path []string, v interface{}) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		w.add(path, "expected number, received "+kindOf(v))
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		w.add(path, "invalid number")
		return 0, false
	}
	return f, true
}

func (w *walker) enum(path []string, v interface{}, allowed ...string) {
	s, ok := w.str(path, v)
	if !ok {
		return
	}
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	w.add(path, "invalid enum value, expected one of "+strings.Join(allowed, "|"))
}

func (w *walker) stringList(path []string, v interface{}) {
	arr, ok := w.array(path, v)
	if !ok {
		return
	}
	for i, item := range arr {
		w.str(index(path, i), item)
	}
}

// optional runs check when key is present and not null.
func optional(m map[string]interface{}, key string, check func(v interface{})) {
	v, ok := m[key]
	if !ok || v == nil {
		return
	}
	check(v)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
