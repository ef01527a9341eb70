package validation

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/invopop/jsonschema"
)

var (
	valueType = reflect.TypeOf(types.Value{})
	rawType   = reflect.TypeOf(json.RawMessage{})
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case valueType:
				// Dates travel as RFC 3339 strings, so they match the string branch.
				return &jsonschema.Schema{
					AnyOf: []*jsonschema.Schema{
						{Type: "string"},
						{Type: "number"},
					},
					Description: "string, number or RFC 3339 date",
				}
			case rawType:
				return &jsonschema.Schema{}
			}
			return nil
		},
	}
}

// ConfigSchema returns the JSON Schema document of a chart configuration.
func ConfigSchema() *jsonschema.Schema {
	s := reflector().Reflect(&types.ChartConfig{})
	s.Title = "ChartConfig"
	s.Required = []string{"type"}
	if p, ok := s.Properties.Get("id"); ok {
		p.Pattern = fmt.Sprintf("^[A-Za-z0-9_-]{0,%d}$", types.MaxChartIDLength)
	}
	if p, ok := s.Properties.Get("type"); ok {
		for _, t := range types.ChartTypes {
			p.Enum = append(p.Enum, string(t))
		}
	}
	setEnum(s, "barLayout", string(types.BarHorizontal), string(types.BarVertical))
	setEnum(s, "theme", string(types.ThemeSystem), string(types.ThemeLight), string(types.ThemeDark))
	setEnum(s, "colorVariant", string(types.ColorNormal), string(types.ColorTooltipDemo))
	if p, ok := s.Properties.Get("size"); ok {
		p.Required = []string{"width", "height"}
	}
	return s
}

// DatasetSchema returns the JSON Schema document of a dataset.
func DatasetSchema() *jsonschema.Schema {
	s := reflector().Reflect(&types.Dataset{})
	s.Title = "Dataset"
	s.Required = []string{"fields", "rows"}
	if p, ok := s.Properties.Get("fields"); ok && p.Items != nil {
		p.Items.Required = []string{"key"}
		if key, ok := p.Items.Properties.Get("key"); ok {
			one := uint64(1)
			key.MinLength = &one
		}
	}
	return s
}

func setEnum(s *jsonschema.Schema, prop string, values ...string) {
	p, ok := s.Properties.Get(prop)
	if !ok {
		return
	}
	for _, v := range values {
		p.Enum = append(p.Enum, v)
	}
}
