package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tasktree/pkg/errors"
)

// Format is an output format supported by [Render].
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Render lays out a DOT graph with Graphviz and returns it in the given format.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported render format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: sans-serif; background: #fafafa; }
  h1 { font-size: 1.1rem; padding: 0.75rem 1rem; margin: 0; }
  .graph { padding: 1rem; overflow: auto; }
  .graph svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="graph">{{.SVG}}</div>
</body>
</html>
`))

// RenderHTML renders dot to SVG and embeds it in a standalone HTML page.
func RenderHTML(ctx context.Context, dot, title string) ([]byte, error) {
	svg, err := Render(ctx, dot, FormatSVG)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTmpl.Execute(&buf, struct {
		Title string
		SVG   template.HTML
	}{title, template.HTML(svg)})
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	return buf.Bytes(), nil
}
