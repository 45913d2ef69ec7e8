// Package server exposes a task graph over read-only HTTP.
//
// Every request loads the current snapshot from the store, so handlers never
// share a graph and the server needs no locking of its own. Writes go through
// the CLI.
//
// Routes:
//
//	GET /                 HTML page with the rendered diagram
//	GET /healthz          liveness probe
//	GET /version          build information
//	GET /api/tasks        reachable task records, in traversal order
//	GET /api/tasks/{id}   one task record plus its current parent slot
//	GET /graph.json       the graph in its on-disk JSON format
//	GET /graph.dot        Graphviz source
//	GET /graph.svg        rendered diagram
//	GET /metrics          Prometheus metrics (when a gatherer is configured)
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tasktree/pkg/buildinfo"
	"github.com/matzehuels/tasktree/pkg/cache"
	"github.com/matzehuels/tasktree/pkg/errors"
	graphio "github.com/matzehuels/tasktree/pkg/io"
	"github.com/matzehuels/tasktree/pkg/observability"
	"github.com/matzehuels/tasktree/pkg/render/nodelink"
	"github.com/matzehuels/tasktree/pkg/store"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// Options configures the HTTP handler.
type Options struct {
	Render nodelink.Options
	Logger *log.Logger

	// Cache holds rendered diagrams keyed by their DOT source. Nil disables
	// caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer
}

type server struct {
	store  store.Store
	opts   Options
	logger *log.Logger
}

// NewHandler returns the HTTP handler serving graphs from s.
func NewHandler(s store.Store, opts Options) http.Handler {
	srv := &server{store: s, opts: opts, logger: opts.Logger}
	if srv.logger == nil {
		srv.logger = log.Default()
	}
	if srv.opts.Cache == nil {
		srv.opts.Cache = cache.NewNullCache()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.logRequests)

	r.Get("/", srv.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", srv.handleTasks)
		r.Get("/{id}", srv.handleTask)
	})
	r.Get("/graph.json", srv.handleGraphJSON)
	r.Get("/graph.dot", srv.handleDOT)
	r.Get("/graph.svg", srv.handleSVG)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Serve runs the handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// taskJSON is the API form of a task record.
type taskJSON struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Done         bool   `json:"done"`
	Dependencies []int  `json:"dependencies"`
	Parent       *int   `json:"parent,omitempty"`
}

func toJSON(r taskgraph.Record) taskJSON {
	return taskJSON{ID: r.ID, Name: r.Name, Done: r.Done, Dependencies: r.Dependencies}
}

func (s *server) load(w http.ResponseWriter, r *http.Request) (*taskgraph.Graph, bool) {
	g, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return g, true
}

func (s *server) handleTasks(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	records := g.Reachable()
	out := make([]taskJSON, len(records))
	for i, rec := range records {
		out[i] = toJSON(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := errors.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	n, found := g.Find(id)
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeTaskNotFound, "no task with id %d", id))
		return
	}
	out := toJSON(n.Record())
	if p := n.Parent(); p != nil {
		out.Parent = &p.ID
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleGraphJSON(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graphio.WriteJSON(g, w); err != nil {
		s.logger.Error("write graph", "err", err)
	}
}

func (s *server) handleDOT(w http.ResponseWriter, r *http.Request) {
	g, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(nodelink.ToDOT(g, s.opts.Render)))
}

func (s *server) handleSVG(w http.ResponseWriter, r *http.Request) {
	svg, ok := s.render(w, r, string(nodelink.FormatSVG), func(ctx context.Context, dot string) ([]byte, error) {
		return nodelink.Render(ctx, dot, nodelink.FormatSVG)
	})
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, ok := s.render(w, r, "html", func(ctx context.Context, dot string) ([]byte, error) {
		return nodelink.RenderHTML(ctx, dot, "tasktree")
	})
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// render loads the graph and draws it through the render cache.
func (s *server) render(w http.ResponseWriter, r *http.Request, format string, draw func(context.Context, string) ([]byte, error)) ([]byte, bool) {
	g, ok := s.load(w, r)
	if !ok {
		return nil, false
	}
	ctx := r.Context()
	dot := nodelink.ToDOT(g, s.opts.Render)

	start := time.Now()
	data, hit, err := cache.GetOrCompute(ctx, s.opts.Cache, cache.RenderKey(format, dot), s.opts.CacheTTL, func() ([]byte, error) {
		return draw(ctx, dot)
	})
	if !hit {
		observability.Render().OnRender(ctx, format, len(data), time.Since(start), err)
	}
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	s.logger.Debug("rendered", "format", format, "bytes", len(data), "cached", hit)
	return data, true
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeTaskNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"code":    string(code),
		"message": errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
