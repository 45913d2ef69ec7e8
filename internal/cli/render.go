package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tasktree/pkg/cache"
	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/observability"
	"github.com/matzehuels/tasktree/pkg/render"
	"github.com/matzehuels/tasktree/pkg/render/nodelink"
)

// Output formats accepted by the render command.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatHTML = "html"
)

var renderFormats = []string{formatSVG, formatPNG, formatPDF, formatHTML, formatDOT}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format      string // output format; inferred from output's extension when empty
	output      string // output file, or stdout when empty or "-"
	leftToRight bool   // lay the diagram out left to right
	noCache     bool   // always render, bypassing the render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the task graph as a node-link diagram",
		Long: `Draw every reachable task as a node, filled green when done and red when
open, with one edge per dependency. The format defaults to the extension of
--output, or svg.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}

			g, err := c.load(ctx, false)
			if err != nil {
				return err
			}

			ropts := c.renderOptions()
			if opts.leftToRight {
				ropts.LeftToRight = true
			}

			logger := loggerFromContext(ctx)
			prog := newProgress(logger)
			dot := nodelink.ToDOT(g, ropts)

			var data []byte
			if format == formatDOT {
				data = []byte(dot)
			} else {
				rc := c.newRenderCache(opts.noCache)
				defer rc.Close()

				start := time.Now()
				var hit bool
				data, hit, err = cache.GetOrCompute(ctx, rc, cache.RenderKey(format, dot), renderCacheTTL, func() ([]byte, error) {
					return renderDOT(ctx, dot, format)
				})
				if !hit {
					observability.Render().OnRender(ctx, format, len(data), time.Since(start), err)
				}
				if err != nil {
					return err
				}
				logger.Debug("Rendered", "format", format, "bytes", len(data), "cached", hit)
			}

			if opts.output == "" || opts.output == "-" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
			}
			prog.done("Rendered " + format)
			printSuccess(c.out, "Rendered %d tasks", g.Len())
			printFile(c.out, opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "F", "", "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay out left to right instead of top down")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render even when a cached diagram exists")

	return cmd
}

// resolveFormat picks the explicit format, else the output file's
// extension, else svg.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	switch format {
	case "":
		return formatSVG, nil
	case "gv":
		return formatDOT, nil
	}
	for _, f := range renderFormats {
		if f == format {
			return format, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want one of %s)", format, strings.Join(renderFormats, ", "))
}

// renderDOT draws DOT source in one of the image or page formats.
func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case formatSVG:
		return nodelink.Render(ctx, dot, nodelink.FormatSVG)
	case formatPNG:
		return nodelink.Render(ctx, dot, nodelink.FormatPNG)
	case formatHTML:
		return nodelink.RenderHTML(ctx, dot, appName)
	case formatPDF:
		svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", format)
	}
}
