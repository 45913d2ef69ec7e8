package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tasktree/internal/server"
	"github.com/matzehuels/tasktree/pkg/observability"
	"github.com/matzehuels/tasktree/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task graph over read-only HTTP",
		Long: `Serve the task graph as JSON, DOT, SVG, and an HTML page, with Prometheus
metrics on /metrics. The graph is reloaded from the store on every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			s, err := store.Open(c.cfg.Store, store.Options{})
			if err != nil {
				return err
			}
			defer s.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			hooks := observability.NewPrometheusHooks(reg)
			observability.SetStoreHooks(hooks)
			observability.SetRenderHooks(hooks)
			defer observability.Reset()

			rc := c.newRenderCache(noCache)
			defer rc.Close()

			h := server.NewHandler(s, server.Options{
				Render:   c.renderOptions(),
				Logger:   logger,
				Cache:    rc,
				CacheTTL: renderCacheTTL,
				Gatherer: reg,
			})

			printInfo(c.out, "Serving %s", c.location())
			printFile(c.out, "http://"+displayAddr(addr))
			logger.Info("Listening", "addr", addr)
			if err := server.Serve(ctx, addr, h); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "render every request instead of caching diagrams")
	return cmd
}

// displayAddr turns a listen address like ":8080" into one a browser can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
