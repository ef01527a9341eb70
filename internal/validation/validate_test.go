package validation

import (
	"encoding/json"
	"testing"

	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monthly = `{
  "fields": [{"key": "month", "label": "Month"}, {"key": "desktop", "label": "Desktop"}, {"key": "mobile", "label": "Mobile"}],
  "rows": [
    {"month": "January", "desktop": 186, "mobile": 80},
    {"month": "February", "desktop": 305, "mobile": 200},
    {"month": "March", "desktop": 237, "mobile": 120},
    {"month": "April", "desktop": 73, "mobile": 190},
    {"month": "May", "desktop": 209, "mobile": 130},
    {"month": "June", "desktop": 214, "mobile": 140}
  ]
}`

func TestDataset_RoundTripsUnchanged(t *testing.T) {
	ds, err := Dataset([]byte(monthly))
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 6)

	out, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, monthly, string(out))
}

func TestDataset_NestedObjectRejected(t *testing.T) {
	raw := `{"fields":[{"key":"month"},{"key":"desktop"}],"rows":[{"month":"Jan","desktop":1},{"month":"Feb","desktop":2},{"month":"Mar","desktop":{"v":3}}]}`

	_, err := Dataset([]byte(raw))
	require.Error(t, err)
	assert.Equal(t, cserrors.ErrCategoryValidation, cserrors.GetCategory(err))

	issues := cserrors.GetIssues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "rows.2.desktop", issues[0].Path)
	assert.Contains(t, issues[0].Message, "object")
}

// datasetIssues are rejected by Dataset with the first issue at path.
var datasetIssues = []struct {
	name string
	raw  string
	path string
}{
	{"not an object", `[1,2]`, ""},
	{"missing fields", `{"rows":[]}`, "fields"},
	{"missing rows", `{"fields":[]}`, "rows"},
	{"field without key", `{"fields":[{"label":"x"}],"rows":[]}`, "fields.0.key"},
	{"empty key", `{"fields":[{"key":""}],"rows":[]}`, "fields.0.key"},
	{"duplicate key", `{"fields":[{"key":"a"},{"key":"a"}],"rows":[]}`, "fields.1.key"},
	{"numeric label", `{"fields":[{"key":"a","label":3}],"rows":[]}`, "fields.0.label"},
	{"row not object", `{"fields":[],"rows":[1]}`, "rows.0"},
	{"null cell", `{"fields":[],"rows":[{"a":null}]}`, "rows.0.a"},
	{"boolean cell", `{"fields":[],"rows":[{},{"a":true}]}`, "rows.1.a"},
}

func TestDataset_Issues(t *testing.T) {
	for _, tt := range datasetIssues {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dataset([]byte(tt.raw))
			require.Error(t, err)
			issues := cserrors.GetIssues(err)
			require.NotEmpty(t, issues)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestDataset_InvalidJSON(t *testing.T) {
	_, err := Dataset([]byte(`{"fields": [`))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeInvalidDataset, cserrors.GetCode(err))

	_, err = Dataset([]byte(`{"fields":[],"rows":[]} trailing`))
	require.Error(t, err)
}

func TestDataset_NormalizesEmpty(t *testing.T) {
	ds, err := Dataset([]byte(`{"fields":[],"rows":[]}`))
	require.NoError(t, err)
	out, _ := json.Marshal(ds)
	assert.JSONEq(t, `{"fields":[],"rows":[]}`, string(out))
}

const validConfig = `{"id":"abc123","type":"bar","xKey":"month","yKeys":["desktop","mobile"],"stacked":true,"colors":{"desktop":"#ff0000"},"tooltip":{"enabled":true,"variant":"advanced","showTotal":true},"size":{"width":600,"height":300},"theme":"dark"}`

func TestConfig_Valid(t *testing.T) {
	raw := validConfig
	cfg, err := Config([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, types.ChartBar, cfg.Type)
	assert.True(t, types.Flag(cfg.Stacked, false))
	assert.Equal(t, "#ff0000", cfg.Colors["desktop"])
	assert.Equal(t, 300, cfg.Size.Height)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

// configIssues are rejected by Config with the first issue at path.
var configIssues = []struct {
	name string
	raw  string
	path string
}{
	{"missing type", `{"xKey":"a"}`, "type"},
	{"bad type", `{"type":"scatter"}`, "type"},
	{"bad id", `{"id":"a b","type":"bar"}`, "id"},
	{"yKeys not strings", `{"type":"bar","yKeys":["a",1]}`, "yKeys.1"},
	{"flag not bool", `{"type":"bar","stacked":"yes"}`, "stacked"},
	{"bad layout", `{"type":"bar","barLayout":"diagonal"}`, "barLayout"},
	{"color not string", `{"type":"bar","colors":{"a":1}}`, "colors.a"},
	{"tooltip flag", `{"type":"bar","tooltip":{"showTotal":1}}`, "tooltip.showTotal"},
	{"size fraction", `{"type":"bar","size":{"width":10.5,"height":300}}`, "size.width"},
	{"size missing height", `{"type":"bar","size":{"width":10}}`, "size.height"},
	{"bad theme", `{"type":"bar","theme":"sepia"}`, "theme"},
}

func TestConfig_Issues(t *testing.T) {
	for _, tt := range configIssues {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Config([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, cserrors.CodeInvalidConfig, cserrors.GetCode(err))
			issues := cserrors.GetIssues(err)
			require.NotEmpty(t, issues)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestRequest(t *testing.T) {
	body := `{"config":{"type":"bar","xKey":"month","yKeys":["desktop","mobile"]},"dataset":` + monthly + `}`
	req, err := Request([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "month", req.Config.XKey)
	assert.Len(t, req.Dataset.Rows, 6)
}

func TestRequest_Errors(t *testing.T) {
	_, err := Request([]byte(`{"dataset":` + monthly + `}`))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeInvalidConfig, cserrors.GetCode(err))

	_, err = Request([]byte(`{"config":{"type":"line"}}`))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeInvalidDataset, cserrors.GetCode(err))

	_, err = Request([]byte(`"hello"`))
	require.Error(t, err)
	assert.Equal(t, cserrors.CodeInvalidBody, cserrors.GetCode(err))
}

func TestReferences(t *testing.T) {
	ds, err := Dataset([]byte(monthly))
	require.NoError(t, err)

	ok := types.ChartConfig{Type: types.ChartBar, XKey: "month", YKeys: []string{"desktop", "mobile"}}
	assert.Empty(t, References(ok, ds))
	assert.NoError(t, CheckReferences(ok, ds))

	bad := types.ChartConfig{Type: types.ChartLine, XKey: "week", YKeys: []string{"desktop", "tablet"}, LineKeys: []string{"x"}}
	issues := References(bad, ds)
	paths := make([]string, len(issues))
	for i, is := range issues {
		paths[i] = is.Path
	}
	assert.Equal(t, []string{"xKey", "yKeys.1", "lineKeys.0"}, paths)

	err = CheckReferences(bad, ds)
	assert.Equal(t, cserrors.CodeInvalidReference, cserrors.GetCode(err))

	noSeries := types.ChartConfig{Type: types.ChartPie, XKey: "month"}
	assert.Len(t, References(noSeries, ds), 1)

	radial := types.ChartConfig{Type: types.ChartRadial}
	assert.Empty(t, References(radial, ds))
}

func TestSchemas(t *testing.T) {
	cs := ConfigSchema()
	assert.Equal(t, []string{"type"}, cs.Required)
	p, ok := cs.Properties.Get("type")
	require.True(t, ok)
	assert.Len(t, p.Enum, len(types.ChartTypes))

	ds := DatasetSchema()
	assert.Equal(t, []string{"fields", "rows"}, ds.Required)

	b, err := json.Marshal(cs)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"yKeys"`)
}
