package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartsmith/chartsmith/internal/axis"
	"github.com/chartsmith/chartsmith/internal/colors"
	"github.com/chartsmith/chartsmith/internal/legend"
	"github.com/chartsmith/chartsmith/pkg/types"
)

func monthly() types.Dataset {
	months := []string{"January", "February", "March", "April", "May", "June"}
	desktop := []float64{186, 305, 237, 73, 209, 214}
	mobile := []float64{80, 200, 120, 190, 130, 140}

	ds := types.Dataset{Fields: []types.ChartField{
		{Key: "month", Label: "Month"},
		{Key: "desktop", Label: "Desktop"},
		{Key: "mobile", Label: "Mobile"},
	}}
	for i, m := range months {
		ds.Rows = append(ds.Rows, types.Row{
			"month":   types.String(m),
			"desktop": types.Number(desktop[i]),
			"mobile":  types.Number(mobile[i]),
		})
	}
	return ds
}

func barConfig() types.ChartConfig {
	return types.ChartConfig{ID: "bar-1", Type: types.ChartBar, XKey: "month", YKeys: []string{"desktop", "mobile"}}
}

func TestBuild_Bar(t *testing.T) {
	p, err := Build(barConfig(), monthly(), Options{})
	require.NoError(t, err)

	assert.Equal(t, types.DefaultWidth, p.Width)
	assert.Equal(t, types.DefaultHeight, p.Height)
	assert.Equal(t, types.ThemeLight, p.Theme)
	assert.Equal(t, colors.For(types.ThemeLight).Slot(0), p.Colors["desktop"])
	assert.Equal(t, colors.For(types.ThemeLight).Slot(1), p.Colors["mobile"])
	assert.Equal(t, colors.RolePrimary, p.Series[0].Role)

	require.NotNil(t, p.Domain)
	assert.Equal(t, axis.Compute(monthly().Rows, []string{"desktop", "mobile"}), *p.Domain)
	assert.NotEmpty(t, p.Ticks)

	assert.Equal(t, []string{"January", "February", "March", "April", "May", "June"}, p.Categories)

	require.NotNil(t, p.Legend)
	require.Len(t, p.Legend.Items, 2)
	assert.Equal(t, "Desktop", p.Legend.Items[0].Label)
	assert.Equal(t, float64(p.Height)-30, p.Legend.Y)

	require.Len(t, p.Tooltips, 6)
	assert.Equal(t, "January", p.Tooltips[0].Label)
	require.Len(t, p.Tooltips[0].Entries, 2)
	assert.Equal(t, "186", p.Tooltips[0].Entries[0].Value)
}

func TestBuild_ThemeOverride(t *testing.T) {
	cfg := barConfig()
	cfg.Theme = types.ThemeLight
	p, err := Build(cfg, monthly(), Options{Theme: types.ThemeDark})
	require.NoError(t, err)
	assert.Equal(t, types.ThemeDark, p.Theme)
	assert.Equal(t, colors.TextDark, p.TextColor)
	assert.Equal(t, colors.GridDark, p.GridColor)
}

func TestBuild_DefaultSizeFromOptions(t *testing.T) {
	p, err := Build(barConfig(), monthly(), Options{Width: 800, Height: 500})
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)
	assert.Equal(t, 500, p.Height)

	cfg := barConfig()
	cfg.Size = &types.Size{Width: 320, Height: 240}
	p, err = Build(cfg, monthly(), Options{Width: 800, Height: 500})
	require.NoError(t, err)
	assert.Equal(t, 320, p.Width)
}

func TestBuild_StackedDomain(t *testing.T) {
	cfg := barConfig()
	cfg.Stacked = types.Bool(true)
	p, err := Build(cfg, monthly(), Options{})
	require.NoError(t, err)
	assert.Equal(t, axis.ComputeStacked(monthly().Rows, cfg.YKeys), *p.Domain)

	cfg.StackedExpanded = types.Bool(true)
	p, err = Build(cfg, monthly(), Options{})
	require.NoError(t, err)
	assert.Equal(t, axis.Domain{Min: 0, Max: 1}, *p.Domain)
}

func TestBuild_PieKeysAreCategories(t *testing.T) {
	cfg := types.ChartConfig{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}}
	p, err := Build(cfg, monthly(), Options{})
	require.NoError(t, err)
	assert.Nil(t, p.Domain)
	assert.Equal(t, p.Categories, p.Keys())
	assert.Len(t, p.Colors, 6)
}

func TestBuild_LegendHidden(t *testing.T) {
	cfg := barConfig()
	cfg.Legend = types.Bool(false)
	p, err := Build(cfg, monthly(), Options{})
	require.NoError(t, err)
	assert.Nil(t, p.Legend)
}

func TestBuild_InvalidType(t *testing.T) {
	_, err := Build(types.ChartConfig{Type: "scatter"}, monthly(), Options{})
	assert.Error(t, err)
}

func TestRender_AllTypes(t *testing.T) {
	ds := monthly()
	cases := []types.ChartConfig{
		barConfig(),
		{Type: types.ChartBar, XKey: "month", YKeys: []string{"desktop"}, BarLayout: types.BarHorizontal, BarLabel: types.Bool(true)},
		{Type: types.ChartBar, XKey: "month", YKeys: []string{"desktop", "mobile"}, Stacked: types.Bool(true)},
		{Type: types.ChartLine, XKey: "month", YKeys: []string{"desktop"}, ShowDots: types.Bool(true), Stepped: types.Bool(true)},
		{Type: types.ChartArea, XKey: "month", YKeys: []string{"desktop", "mobile"}, StackedExpanded: types.Bool(true)},
		{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}, Donut: types.Bool(true), CenterLabel: types.Bool(true), ShowLabels: types.Bool(true)},
		{Type: types.ChartRadar, XKey: "month", YKeys: []string{"desktop", "mobile"}},
		{Type: types.ChartRadial, XKey: "month", YKeys: []string{"desktop"}, CenterText: types.Bool(true)},
	}

	for _, cfg := range cases {
		t.Run(string(cfg.Type), func(t *testing.T) {
			out := Render(cfg, ds, Options{})
			require.NoError(t, out.Err)
			assert.False(t, out.Failed())
			svg := string(out.SVG)
			assert.True(t, strings.HasPrefix(strings.TrimSpace(svg), "<svg"), svg[:min(len(svg), 40)])
			assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	a := Render(barConfig(), monthly(), Options{})
	b := Render(barConfig(), monthly(), Options{})
	assert.Equal(t, a.SVG, b.SVG)
}

func TestRender_FailSoft(t *testing.T) {
	out := Render(types.ChartConfig{Type: "scatter", Size: &types.Size{Width: 300, Height: 200}}, monthly(), Options{})
	require.Error(t, out.Err)
	assert.True(t, out.Failed())
	svg := string(out.SVG)
	assert.Contains(t, svg, "Unable to render chart")
	assert.True(t, strings.HasPrefix(svg, `<svg width="300" height="200" `), svg[:min(len(svg), 60)])
}

func TestRender_RootSize(t *testing.T) {
	for _, cfg := range []types.ChartConfig{
		barConfig(),
		{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}},
		{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}, Donut: types.Bool(true)},
	} {
		out := Render(cfg, monthly(), Options{Width: 640, Height: 360})
		require.NoError(t, out.Err)
		svg := string(out.SVG)
		assert.True(t, strings.HasPrefix(svg, `<svg width="640" height="360" `), svg[:min(len(svg), 60)])
		assert.Contains(t, svg, `viewBox="0 0 640 360"`)
		assert.Equal(t, 1, strings.Count(svg, "<svg "))
	}
}

func TestRender_EscapesText(t *testing.T) {
	ds := types.Dataset{Fields: []types.ChartField{
		{Key: "month"},
		{Key: "desktop", Label: `<script>alert("x")</script>`},
		{Key: "mobile", Label: "Tom & Jerry"},
	}}
	ds.Rows = []types.Row{
		{"month": types.String("<b>Jan</b>"), "desktop": types.Number(1), "mobile": types.Number(2)},
		{"month": types.String("Feb & Mar"), "desktop": types.Number(3), "mobile": types.Number(4)},
	}

	for _, typ := range types.ChartTypes {
		t.Run(string(typ), func(t *testing.T) {
			cfg := types.ChartConfig{Type: typ, XKey: "month", YKeys: []string{"desktop", "mobile"}}
			out := Render(cfg, ds, Options{})
			require.NoError(t, out.Err)
			svg := string(out.SVG)
			assert.NotContains(t, svg, "<script")
			assert.NotContains(t, svg, "<b>")
			assert.NotContains(t, svg, "& ")
			assert.Contains(t, svg, "&amp;")
		})
	}

	out := Render(types.ChartConfig{Type: "scatter"}, ds, Options{})
	require.Error(t, out.Err)
	assert.NotContains(t, string(Placeholder(300, 200, types.ThemeLight, "<script>x</script>")), "<script")
}

var textFontSize = regexp.MustCompile(`<text [^>]*font-size:([0-9.]+)px`)

func TestRender_TextMatchesMeasurer(t *testing.T) {
	f, err := legend.Font()
	require.NoError(t, err)
	family := f.Name(truetype.NameIDFontFamily)
	require.NotEmpty(t, family)

	cases := []types.ChartConfig{
		barConfig(),
		{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}, ShowLabels: types.Bool(true)},
		{Type: types.ChartRadar, XKey: "month", YKeys: []string{"desktop"}},
	}
	for _, cfg := range cases {
		t.Run(string(cfg.Type), func(t *testing.T) {
			out := Render(cfg, monthly(), Options{})
			require.NoError(t, out.Err)
			svg := string(out.SVG)

			sizes := textFontSize.FindAllStringSubmatch(svg, -1)
			require.NotEmpty(t, sizes)
			for _, m := range sizes {
				size, err := strconv.ParseFloat(m[1], 64)
				require.NoError(t, err)
				assert.Equal(t, legend.DefaultOptions.FontSize, size)
			}
			assert.Contains(t, svg, fmt.Sprintf("font-family:'%s',sans-serif", family))
		})
	}

	p, err := Build(barConfig(), monthly(), Options{})
	require.NoError(t, err)
	m := legend.NewFaceMeasurer(legend.DefaultOptions.FontSize)
	it := p.Legend.Items[0]
	assert.Equal(t, legend.DefaultOptions.SwatchSize+legend.DefaultOptions.SwatchGap+m.Measure("Desktop"), it.Width)
}

func TestRender_PieColors(t *testing.T) {
	cfg := types.ChartConfig{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}, Theme: types.ThemeDark}
	p, err := Build(cfg, monthly(), Options{})
	require.NoError(t, err)
	data, err := Draw(p)
	require.NoError(t, err)
	svg := string(data)

	for _, k := range p.Keys() {
		c := colors.MustParse(p.ColorOf(k), fallbackColor)
		assert.Contains(t, svg, "fill:"+c.String(), k)
	}
	assert.Contains(t, svg, "fill:"+backgroundDark.String())
}

func TestRender_PieSingleSlice(t *testing.T) {
	ds := monthly()
	ds.Rows = ds.Rows[:1]
	for _, donut := range []bool{false, true} {
		cfg := types.ChartConfig{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}, Donut: types.Bool(donut)}
		p, err := Build(cfg, ds, Options{})
		require.NoError(t, err)
		data, err := Draw(p)
		require.NoError(t, err)
		c := colors.MustParse(p.ColorOf("January"), fallbackColor)
		assert.Contains(t, string(data), "fill:"+c.String())
	}
}

func TestRender_PieNoData(t *testing.T) {
	ds := monthly()
	for i := range ds.Rows {
		ds.Rows[i]["desktop"] = types.Number(0)
	}
	out := Render(types.ChartConfig{Type: types.ChartPie, XKey: "month", YKeys: []string{"desktop"}}, ds, Options{})
	require.NoError(t, out.Err)
	assert.Contains(t, string(out.SVG), "No data")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	long := strings.Repeat("é", 100)
	got := truncate(long, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	svg := Placeholder(400, 300, types.ThemeLight, strings.Repeat("é", 60)+strings.Repeat("ü", 40))
	assert.True(t, utf8.Valid(svg))
}

func TestRender_EmptyDataset(t *testing.T) {
	for _, typ := range types.ChartTypes {
		cfg := types.ChartConfig{Type: typ, XKey: "month", YKeys: []string{"desktop"}}
		out := Render(cfg, types.Dataset{}, Options{})
		assert.NoError(t, out.Err, typ)
	}
}

func TestSteps(t *testing.T) {
	got := steps([][2]float64{{0, 10}, {5, 20}, {10, 5}})
	want := [][2]float64{{0, 10}, {5, 10}, {5, 20}, {10, 20}, {10, 5}}
	assert.Equal(t, want, got)
}

func TestEmbedSnippet(t *testing.T) {
	got := EmbedSnippet("https://charts.example.com/", "abc123", 600, 400)
	assert.Equal(t, `<iframe src="https://charts.example.com/embed/abc123" width="600" height="400" style="border:0"></iframe>`, got)
}

func TestEmbedPage(t *testing.T) {
	page, err := EmbedPage("Sales <2024>", types.ThemeDark, []byte(`<svg></svg>`))
	require.NoError(t, err)
	s := string(page)
	assert.Contains(t, s, "<svg></svg>")
	assert.Contains(t, s, "Sales &lt;2024&gt;")
	assert.Contains(t, s, "#09090b")
}
