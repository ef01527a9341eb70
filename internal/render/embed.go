package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/chartsmith/chartsmith/pkg/types"
)

// EmbedSnippet returns the iframe markup that embeds chart id from origin.
func EmbedSnippet(origin, id string, width, height int) string {
	src := fmt.Sprintf("%s/embed/%s", strings.TrimRight(origin, "/"), id)
	return fmt.Sprintf(`<iframe src="%s" width="%d" height="%d" style="border:0"></iframe>`,
		template.HTMLEscapeString(src), width, height)
}

var embedPage = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>html,body{margin:0;padding:0;background:{{.Background}};overflow:hidden}</style>
</head>
<body>
{{.SVG}}
</body>
</html>
`))

// EmbedPage returns the HTML document served to embedding iframes.
func EmbedPage(title string, theme types.Theme, svg []byte) ([]byte, error) {
	bg := Background(theme)
	var buf bytes.Buffer
	err := embedPage.Execute(&buf, struct {
		Title      string
		Background template.CSS
		SVG        template.HTML
	}{
		Title:      title,
		Background: template.CSS(fmt.Sprintf("#%02x%02x%02x", bg.R, bg.G, bg.B)),
		SVG:        template.HTML(svg),
	})
	if err != nil {
		return nil, fmt.Errorf("render: failed to build embed page: %w", err)
	}
	return buf.Bytes(), nil
}
