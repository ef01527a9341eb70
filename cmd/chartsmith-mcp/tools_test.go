package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsmith/chartsmith/internal/config"
	"github.com/chartsmith/chartsmith/internal/logging"
)

const (
	barConfig  = `{"id": "mcp-chart", "type": "bar", "xKey": "month", "yKeys": ["desktop", "mobile"]}`
	barDataset = `{
		"fields": [{"key": "month"}, {"key": "desktop"}, {"key": "mobile"}],
		"rows": [
			{"month": "January", "desktop": 186, "mobile": 80},
			{"month": "February", "desktop": 305, "mobile": 200}
		]
	}`
)

func newTools() *tools {
	return &tools{defaults: config.RenderConfig{Width: 640, Height: 360}, log: logging.Discard()}
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestRenderChart(t *testing.T) {
	tl := newTools()
	ctx := context.Background()

	res, err := tl.renderChart(ctx, ChartArgs{Config: json.RawMessage(barConfig), Dataset: json.RawMessage(barDataset)})
	require.NoError(t, err)
	assert.False(t, res.IsError, textOf(t, res))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(textOf(t, res)), "<svg"))

	res, err = tl.renderChart(ctx, ChartArgs{Preset: "radar-basic", Theme: "dark"})
	require.NoError(t, err)
	assert.False(t, res.IsError, textOf(t, res))
	assert.Contains(t, textOf(t, res), "<svg")
}

func TestRenderChart_Errors(t *testing.T) {
	tl := newTools()
	ctx := context.Background()

	tests := []struct {
		name string
		args ChartArgs
		want string
	}{
		{"missing everything", ChartArgs{}, "config"},
		{"unknown preset", ChartArgs{Preset: "nope"}, "Preset not found"},
		{"preset and config", ChartArgs{Preset: "bar-basic", Config: json.RawMessage(barConfig)}, "mutually exclusive"},
		{
			"unknown key",
			ChartArgs{
				Config:  json.RawMessage(strings.Replace(barConfig, `"mobile"`, `"tablet"`, 1)),
				Dataset: json.RawMessage(barDataset),
			},
			"yKeys.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tl.renderChart(ctx, tt.args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, textOf(t, res), tt.want)
		})
	}
}

func TestPlanChart(t *testing.T) {
	tl := newTools()
	res, err := tl.planChart(context.Background(), ChartArgs{
		Config:  json.RawMessage(barConfig),
		Dataset: json.RawMessage(barDataset),
		Width:   800,
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var plan struct {
		ChartID string            `json:"chartId"`
		Width   int               `json:"width"`
		Height  int               `json:"height"`
		Colors  map[string]string `json:"colors"`
		Ticks   []float64         `json:"ticks"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &plan))
	assert.Equal(t, "mcp-chart", plan.ChartID)
	assert.Equal(t, 800, plan.Width)
	assert.Equal(t, 360, plan.Height)
	assert.Contains(t, plan.Colors, "desktop")
	assert.Contains(t, plan.Colors, "mobile")
	assert.NotEmpty(t, plan.Ticks)
}

func TestListPresets(t *testing.T) {
	tl := newTools()
	res, err := tl.listPresets(context.Background(), PresetArgs{Category: "pie"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Presets []PresetSummary `json:"presets"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	require.NotEmpty(t, out.Presets)
	for _, p := range out.Presets {
		assert.Equal(t, "pie", string(p.Category))
	}

	res, err = tl.listPresets(context.Background(), PresetArgs{})
	require.NoError(t, err)
	assert.Contains(t, textOf(t, res), "bar-basic")
}

func TestValidate(t *testing.T) {
	tl := newTools()
	ctx := context.Background()
	request := json.RawMessage(`{"config": ` + barConfig + `, "dataset": ` + barDataset + `}`)

	res, err := tl.validate(ctx, ValidateArgs{Document: request})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "valid", textOf(t, res))

	res, err = tl.validate(ctx, ValidateArgs{Kind: "dataset", Document: json.RawMessage(`{"fields": [], "rows": [{"a": {}}]}`)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "rows.0.a")

	res, err = tl.validate(ctx, ValidateArgs{Kind: "config", Document: json.RawMessage(`{"type": "donut"}`)})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tl.validate(ctx, ValidateArgs{Kind: "chart", Document: request})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tl.validate(ctx, ValidateArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSchema(t *testing.T) {
	tl := newTools()
	res, err := tl.schema(context.Background(), SchemaArgs{Name: "config"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "yKeys")

	res, err = tl.schema(context.Background(), SchemaArgs{Name: "chart"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_CallTool(t *testing.T) {
	srv := newServer(newTools())

	msg := `{"jsonrpc": "2.0", "id": 1, "method": "tools/call",
		"params": {"name": "render_chart", "arguments": {"preset": "bar-basic"}}}`
	resp := srv.HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "svg")
	assert.NotContains(t, string(data), `"isError":true`)
}
