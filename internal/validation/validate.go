// Package validation checks chart configurations and datasets at every
// boundary where they enter the system.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// Messages used for validation failures.
const (
	MsgInvalidConfig  = "Invalid chart configuration"
	MsgInvalidDataset = "Invalid dataset"
	MsgInvalidBody    = "Invalid request body"
)

// decodeGeneric parses JSON preserving number text.
func decodeGeneric(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return v, nil
}

// Dataset validates raw dataset JSON text.
func Dataset(raw []byte) (types.Dataset, error) {
	v, err := decodeGeneric(raw)
	if err != nil {
		return types.Dataset{}, cserrors.NewValidationError(cserrors.CodeInvalidDataset, MsgInvalidDataset,
			[]cserrors.Issue{{Message: "invalid JSON: " + err.Error()}})
	}
	return datasetFrom(v)
}

// Config validates raw chart configuration JSON text.
func Config(raw []byte) (types.ChartConfig, error) {
	v, err := decodeGeneric(raw)
	if err != nil {
		return types.ChartConfig{}, cserrors.NewValidationError(cserrors.CodeInvalidConfig, MsgInvalidConfig,
			[]cserrors.Issue{{Message: "invalid JSON: " + err.Error()}})
	}
	return configFrom(v)
}

// ChartRequest is the {config, dataset} payload of create and update calls.
type ChartRequest struct {
	Config  types.ChartConfig
	Dataset types.Dataset
}

// Request validates a {config, dataset} body. The configuration is checked
// first; its failure is reported before any dataset issues.
func Request(raw []byte) (ChartRequest, error) {
	v, err := decodeGeneric(raw)
	if err != nil {
		return ChartRequest{}, cserrors.NewValidationError(cserrors.CodeInvalidBody, MsgInvalidBody,
			[]cserrors.Issue{{Message: "invalid JSON: " + err.Error()}})
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return ChartRequest{}, cserrors.NewValidationError(cserrors.CodeInvalidBody, MsgInvalidBody,
			[]cserrors.Issue{{Message: "expected object, received " + kindOf(v)}})
	}

	cfg, err := configFrom(m["config"])
	if err != nil {
		return ChartRequest{}, err
	}
	ds, err := datasetFrom(m["dataset"])
	if err != nil {
		return ChartRequest{}, err
	}
	return ChartRequest{Config: cfg, Dataset: ds}, nil
}

func datasetFrom(v interface{}) (types.Dataset, error) {
	w := &walker{}
	checkDataset(w, nil, v)
	if len(w.issues) > 0 {
		return types.Dataset{}, cserrors.NewValidationError(cserrors.CodeInvalidDataset, MsgInvalidDataset, w.issues)
	}
	var ds types.Dataset
	if err := remarshal(v, &ds); err != nil {
		return types.Dataset{}, cserrors.NewValidationError(cserrors.CodeInvalidDataset, MsgInvalidDataset,
			[]cserrors.Issue{{Message: err.Error()}})
	}
	return NormalizeDataset(ds), nil
}

func configFrom(v interface{}) (types.ChartConfig, error) {
	w := &walker{}
	checkConfig(w, nil, v)
	if len(w.issues) > 0 {
		return types.ChartConfig{}, cserrors.NewValidationError(cserrors.CodeInvalidConfig, MsgInvalidConfig, w.issues)
	}
	var cfg types.ChartConfig
	if err := remarshal(v, &cfg); err != nil {
		return types.ChartConfig{}, cserrors.NewValidationError(cserrors.CodeInvalidConfig, MsgInvalidConfig,
			[]cserrors.Issue{{Message: err.Error()}})
	}
	return cfg, nil
}

func remarshal(v interface{}, out interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// NormalizeDataset makes empty collections explicit so that encoded
// datasets always carry "fields" and "rows" arrays.
func NormalizeDataset(ds types.Dataset) types.Dataset {
	if ds.Fields == nil {
		ds.Fields = []types.ChartField{}
	}
	if ds.Rows == nil {
		ds.Rows = []types.Row{}
	}
	for i, r := range ds.Rows {
		if r == nil {
			ds.Rows[i] = types.Row{}
		}
	}
	return ds
}

func checkDataset(w *walker, path []string, v interface{}) {
	if v == nil {
		w.add(path, "required")
		return
	}
	m, ok := w.object(path, v)
	if !ok {
		return
	}

	fields, present := m["fields"]
	if !present {
		w.add(join(path, "fields"), "required")
	} else if arr, ok := w.array(join(path, "fields"), fields); ok {
		seen := make(map[string]int, len(arr))
		for i, f := range arr {
			fp := index(join(path, "fields"), i)
			fm, ok := w.object(fp, f)
			if !ok {
				continue
			}
			key, present := fm["key"]
			if !present {
				w.add(join(fp, "key"), "required")
			} else if s, ok := w.str(join(fp, "key"), key); ok {
				if s == "" {
					w.add(join(fp, "key"), "must not be empty")
				} else if prev, dup := seen[s]; dup {
					w.add(join(fp, "key"), fmt.Sprintf("duplicate field key (also at fields.%d)", prev))
				} else {
					seen[s] = i
				}
			}
			optional(fm, "label", func(v interface{}) { w.str(join(fp, "label"), v) })
			optional(fm, "secondaryLabel", func(v interface{}) { w.str(join(fp, "secondaryLabel"), v) })
		}
	}

	rows, present := m["rows"]
	if !present {
		w.add(join(path, "rows"), "required")
		return
	}
	arr, ok := w.array(join(path, "rows"), rows)
	if !ok {
		return
	}
	for i, r := range arr {
		rp := index(join(path, "rows"), i)
		rm, ok := w.object(rp, r)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(rm) {
			switch rm[k].(type) {
			case string, json.Number:
			default:
				w.add(join(rp, k), "expected string, number or date, received "+kindOf(rm[k]))
			}
		}
	}
}

var (
	chartTypeNames = func() []string {
		out := make([]string, len(types.ChartTypes))
		for i, t := range types.ChartTypes {
			out[i] = string(t)
		}
		return out
	}()
	configBoolFields = []string{
		"stacked", "stackedExpanded", "stepped", "legend", "gradient", "showIcons",
		"customAxes", "showDots", "barLabel", "donut", "showLabels", "showGrid", "centerLabel",
		"centerText", "interactive",
	}
	tooltipBoolFields = []string{
		"enabled", "showIndicator", "showLabel", "customFormatter", "showTotal", "showIcons",
	}
)

func checkConfig(w *walker, path []string, v interface{}) {
	if v == nil {
		w.add(path, "required")
		return
	}
	m, ok := w.object(path, v)
	if !ok {
		return
	}

	optional(m, "id", func(v interface{}) {
		if s, ok := w.str(join(path, "id"), v); ok && s != "" {
			if err := types.ValidateChartID(s); err != nil {
				w.add(join(path, "id"), err.Error())
			}
		}
	})

	if t, present := m["type"]; !present || t == nil {
		w.add(join(path, "type"), "required")
	} else {
		w.enum(join(path, "type"), t, chartTypeNames...)
	}

	optional(m, "xKey", func(v interface{}) { w.str(join(path, "xKey"), v) })
	optional(m, "yKeys", func(v interface{}) { w.stringList(join(path, "yKeys"), v) })
	optional(m, "lineKeys", func(v interface{}) { w.stringList(join(path, "lineKeys"), v) })
	for _, f := range configBoolFields {
		f := f
		optional(m, f, func(v interface{}) { w.boolean(join(path, f), v) })
	}
	optional(m, "activeIndex", func(v interface{}) {
		if f, ok := w.number(join(path, "activeIndex"), v); ok && (f < 0 || f != float64(int(f))) {
			w.add(join(path, "activeIndex"), "must be a non-negative integer")
		}
	})
	optional(m, "colors", func(v interface{}) {
		cm, ok := w.object(join(path, "colors"), v)
		if !ok {
			return
		}
		for _, k := range sortedKeys(cm) {
			w.str(join(join(path, "colors"), k), cm[k])
		}
	})
	optional(m, "barLayout", func(v interface{}) {
		w.enum(join(path, "barLayout"), v, string(types.BarHorizontal), string(types.BarVertical))
	})
	optional(m, "theme", func(v interface{}) {
		w.enum(join(path, "theme"), v, string(types.ThemeSystem), string(types.ThemeLight), string(types.ThemeDark))
	})
	optional(m, "colorVariant", func(v interface{}) {
		w.enum(join(path, "colorVariant"), v, string(types.ColorNormal), string(types.ColorTooltipDemo))
	})
	optional(m, "axis", func(v interface{}) { w.object(join(path, "axis"), v) })
	optional(m, "tooltip", func(v interface{}) {
		tp := join(path, "tooltip")
		tm, ok := w.object(tp, v)
		if !ok {
			return
		}
		for _, f := range tooltipBoolFields {
			f := f
			optional(tm, f, func(v interface{}) { w.boolean(join(tp, f), v) })
		}
		optional(tm, "variant", func(v interface{}) { w.str(join(tp, "variant"), v) })
		optional(tm, "formatters", func(v interface{}) { w.object(join(tp, "formatters"), v) })
	})
	optional(m, "size", func(v interface{}) {
		sp := join(path, "size")
		sm, ok := w.object(sp, v)
		if !ok {
			return
		}
		for _, dim := range []string{"width", "height"} {
			dv, present := sm[dim]
			if !present {
				w.add(join(sp, dim), "required")
				continue
			}
			f, ok := w.number(join(sp, dim), dv)
			if !ok {
				continue
			}
			if f != float64(int(f)) || f <= 0 || f > MaxDimension {
				w.add(join(sp, dim), fmt.Sprintf("must be an integer between 1 and %d", MaxDimension))
			}
		}
	})
}

// MaxDimension bounds chart width and height in pixels.
const MaxDimension = 10000
