package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compile loads a published schema into a standalone JSON Schema validator.
func compile(t *testing.T, name string, schema interface{}) *jsonschema.Schema {
	t.Helper()
	data, err := json.Marshal(schema)
	require.NoError(t, err)
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	require.NoError(t, err)

	url := "https://chartsmith.test/schemas/" + name + ".json"
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource(url, doc))
	sch, err := c.Compile(url)
	require.NoError(t, err)
	return sch
}

func instance(t *testing.T, raw string) interface{} {
	t.Helper()
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	require.NoError(t, err)
	return v
}

func TestDatasetSchema_AgreesWithDataset(t *testing.T) {
	sch := compile(t, "dataset", DatasetSchema())

	valid := []string{
		monthly,
		`{"fields":[],"rows":[]}`,
		`{"fields":[{"key":"day"},{"key":"visits"}],"rows":[{"day":"2024-04-01T00:00:00Z","visits":3}]}`,
	}
	for _, raw := range valid {
		_, err := Dataset([]byte(raw))
		require.NoError(t, err)
		assert.NoError(t, sch.Validate(instance(t, raw)), raw)
	}

	// Key uniqueness across array items has no JSON Schema keyword.
	skip := map[string]bool{"duplicate key": true}
	for _, tt := range datasetIssues {
		if skip[tt.name] {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, sch.Validate(instance(t, tt.raw)))
		})
	}
}

func TestConfigSchema_AgreesWithConfig(t *testing.T) {
	sch := compile(t, "config", ConfigSchema())

	for _, raw := range []string{validConfig, `{"type":"radial"}`, `{"id":"","type":"pie","donut":true}`} {
		_, err := Config([]byte(raw))
		require.NoError(t, err)
		assert.NoError(t, sch.Validate(instance(t, raw)), raw)
	}

	for _, tt := range configIssues {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, sch.Validate(instance(t, tt.raw)))
		})
	}
}
