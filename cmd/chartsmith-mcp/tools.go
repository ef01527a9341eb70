package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/chartsmith/chartsmith/internal/config"
	cserrors "github.com/chartsmith/chartsmith/internal/errors"
	"github.com/chartsmith/chartsmith/internal/presets"
	"github.com/chartsmith/chartsmith/internal/render"
	"github.com/chartsmith/chartsmith/internal/validation"
	"github.com/chartsmith/chartsmith/pkg/types"
)

// ChartArgs names a chart either inline or by preset id.
type ChartArgs struct {
	Config  json.RawMessage `json:"config,omitempty" jsonschema:"description=Chart configuration object with type and xKey and yKeys. Required unless preset is set"`
	Dataset json.RawMessage `json:"dataset,omitempty" jsonschema:"description=Dataset object with fields and rows. Required unless preset is set"`
	Preset  string          `json:"preset,omitempty" jsonschema:"description=Gallery preset id to use instead of config and dataset (see list_presets)"`
	Theme   string          `json:"theme,omitempty" jsonschema:"description=Theme override,enum=light,enum=dark"`
	Width   int             `json:"width,omitempty" jsonschema:"description=Width in pixels when the config carries no size,minimum=0"`
	Height  int             `json:"height,omitempty" jsonschema:"description=Height in pixels when the config carries no size,minimum=0"`
}

// PresetArgs filters the gallery.
type PresetArgs struct {
	Category string `json:"category,omitempty" jsonschema:"description=Only list presets of this category,enum=area,enum=bar,enum=line,enum=pie,enum=radar,enum=radial,enum=tooltip"`
}

// ValidateArgs carries a document to check.
type ValidateArgs struct {
	Kind     string          `json:"kind,omitempty" jsonschema:"description=Document kind (default request),enum=request,enum=config,enum=dataset"`
	Document json.RawMessage `json:"document" jsonschema:"description=The JSON document to validate"`
}

// SchemaArgs selects a JSON schema.
type SchemaArgs struct {
	Name string `json:"name" jsonschema:"description=Schema name,enum=config,enum=dataset"`
}

// PresetSummary is one line of the gallery listing.
type PresetSummary struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Category    presets.Category `json:"category"`
	Description string           `json:"description,omitempty"`
}

// tools holds the render defaults shared by every handler.
type tools struct {
	defaults config.RenderConfig
	log      logrus.FieldLogger
}

type toolConfig struct {
	name        string
	description string
}

func registerTool[T any](srv *server.MCPServer, cfg toolConfig, handle func(context.Context, T) (*mcp.CallToolResult, error)) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args T
		if err := req.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bind arguments: %v", err)), nil
		}
		return handle(ctx, args)
	}

	tool := mcp.NewTool(
		cfg.name,
		mcp.WithDescription(cfg.description),
		mcp.WithInputSchema[T](),
	)
	srv.AddTool(tool, handler)
}

func (t *tools) register(srv *server.MCPServer) {
	registerTool(srv, toolConfig{
		name: "render_chart",
		description: `Renders a chart to SVG markup.
		              Pass either a preset id or a config plus dataset. The config is validated and its
		              keys are checked against the dataset fields before drawing.`,
	}, t.renderChart)

	registerTool(srv, toolConfig{
		name: "plan_chart",
		description: `Resolves a chart into its render plan: series colors, value axis domain and ticks,
		              legend layout and tooltip contents. Useful to inspect a chart without drawing it.`,
	}, t.planChart)

	registerTool(srv, toolConfig{
		name:        "list_presets",
		description: "Lists the preset gallery. Any preset id can be passed to render_chart or plan_chart.",
	}, t.listPresets)

	registerTool(srv, toolConfig{
		name:        "validate_chart",
		description: "Validates a {config, dataset} request, a chart config or a dataset and reports every issue by path.",
	}, t.validate)

	registerTool(srv, toolConfig{
		name:        "get_schema",
		description: "Returns the JSON schema of chart configs or datasets.",
	}, t.schema)
}

// describe formats an error with its validation issues, one per line.
func describe(err error) string {
	var ce *cserrors.ChartError
	if !errors.As(err, &ce) || len(ce.Issues) == 0 {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(ce.Message)
	for _, is := range ce.Issues {
		b.WriteString("\n  ")
		b.WriteString(is.String())
	}
	return b.String()
}

func (t *tools) resolve(args ChartArgs) (types.ChartConfig, types.Dataset, render.Options, error) {
	var (
		cfg types.ChartConfig
		ds  types.Dataset
	)
	if args.Preset != "" {
		if len(args.Config) > 0 || len(args.Dataset) > 0 {
			return cfg, ds, render.Options{}, fmt.Errorf("preset and config/dataset are mutually exclusive")
		}
		p, err := presets.Get(args.Preset)
		if err != nil {
			return cfg, ds, render.Options{}, err
		}
		cfg, ds = p.Instantiate(p.ID)
	} else {
		raw, err := json.Marshal(map[string]json.RawMessage{"config": args.Config, "dataset": args.Dataset})
		if err != nil {
			return cfg, ds, render.Options{}, err
		}
		req, err := validation.Request(raw)
		if err != nil {
			return cfg, ds, render.Options{}, err
		}
		if err := validation.CheckReferences(req.Config, req.Dataset); err != nil {
			return cfg, ds, render.Options{}, err
		}
		cfg, ds = req.Config, req.Dataset
	}

	opts := render.Options{
		Theme:  types.Theme(args.Theme),
		Width:  t.defaults.Width,
		Height: t.defaults.Height,
	}
	if opts.Theme == "" && cfg.Theme == "" {
		opts.Theme = types.Theme(t.defaults.Theme)
	}
	if args.Width > 0 {
		opts.Width = args.Width
	}
	if args.Height > 0 {
		opts.Height = args.Height
	}
	return cfg, ds, opts, nil
}

func (t *tools) renderChart(ctx context.Context, args ChartArgs) (*mcp.CallToolResult, error) {
	cfg, ds, opts, err := t.resolve(args)
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	out := render.Render(cfg, ds, opts)
	if out.Failed() {
		t.log.WithError(out.Err).WithField("type", cfg.Type).Warn("render failed")
		return mcp.NewToolResultErrorf("render failed: %v", out.Err), nil
	}
	return mcp.NewToolResultText(string(out.SVG)), nil
}

func (t *tools) planChart(ctx context.Context, args ChartArgs) (*mcp.CallToolResult, error) {
	cfg, ds, opts, err := t.resolve(args)
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	plan, err := render.Build(cfg, ds, opts)
	if err != nil {
		return mcp.NewToolResultErrorf("plan failed: %v", err), nil
	}
	return mcp.NewToolResultJSON(plan)
}

func (t *tools) listPresets(ctx context.Context, args PresetArgs) (*mcp.CallToolResult, error) {
	var (
		ps  []presets.Preset
		err error
	)
	if args.Category != "" {
		ps, err = presets.ByCategory(presets.Category(args.Category))
	} else {
		ps, err = presets.All()
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]PresetSummary, len(ps))
	for i, p := range ps {
		out[i] = PresetSummary{ID: p.ID, Title: p.Title, Category: p.Category, Description: p.Description}
	}
	return mcp.NewToolResultJSON(map[string]interface{}{"presets": out})
}

func (t *tools) validate(ctx context.Context, args ValidateArgs) (*mcp.CallToolResult, error) {
	if len(args.Document) == 0 {
		return mcp.NewToolResultError("document is required"), nil
	}

	var err error
	switch args.Kind {
	case "", "request":
		var req validation.ChartRequest
		if req, err = validation.Request(args.Document); err == nil {
			err = validation.CheckReferences(req.Config, req.Dataset)
		}
	case "config":
		_, err = validation.Config(args.Document)
	case "dataset":
		_, err = validation.Dataset(args.Document)
	default:
		return mcp.NewToolResultErrorf("unknown document kind %q", args.Kind), nil
	}
	if err != nil {
		return mcp.NewToolResultError(describe(err)), nil
	}
	return mcp.NewToolResultText("valid"), nil
}

func (t *tools) schema(ctx context.Context, args SchemaArgs) (*mcp.CallToolResult, error) {
	switch args.Name {
	case "config":
		return mcp.NewToolResultJSON(validation.ConfigSchema())
	case "dataset":
		return mcp.NewToolResultJSON(validation.DatasetSchema())
	default:
		return mcp.NewToolResultErrorf("unknown schema %q (must be config or dataset)", args.Name), nil
	}
}
