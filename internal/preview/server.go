package preview

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/bardfile"
	"github.com/vango-dev/bardfile/pkg/blobs"
	"github.com/vango-dev/bardfile/pkg/component"
	"github.com/vango-dev/bardfile/pkg/dom"
	"github.com/vango-dev/bardfile/pkg/middleware"
	"github.com/vango-dev/bardfile/pkg/reconcile"
	"github.com/vango-dev/bardfile/pkg/render"
)

// ServerOptions configures the preview server.
type ServerOptions struct {
	// Config is the project configuration. Defaults to config.New().
	Config *config.Config

	// Markup is the page fragment holding bard-file elements. Defaults to
	// the element described by Config.Field.
	Markup string

	// Store resolves signed ids and backs /blobs. Defaults to an empty
	// memory store.
	Store blobs.Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry collects render and request metrics served on /metrics.
	Registry *prometheus.Registry
}

// Server is the preview server. It owns one in-memory document with the
// upgraded fields and serves it as a page.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	store    blobs.Store
	metrics  *prometheus.Registry
	renderer *render.Renderer

	root       dom.Element
	sched      *component.Scheduler
	components *component.Registry
	hosts      []*component.Host
	live       *LiveServer
	router     chi.Router

	mu         sync.Mutex
	snapshot   string
	httpServer *http.Server
	running    bool
}

// NewServer parses the markup, upgrades its bard-file elements and renders
// them once.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}
	markup := options.Markup
	if markup == "" {
		markup = cfg.FieldMarkup()
	}
	store := options.Store
	if store == nil {
		store = blobs.NewMemoryStore()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := options.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	doc := dom.NewDocument()
	root := doc.CreateElement("form")
	if err := dom.AppendMarkup(doc, root, markup); err != nil {
		return nil, errors.New(errors.ErrMarkup).Wrap(err)
	}

	eng := reconcile.New(doc, reconcile.WithLogger(logger))
	sched := component.NewScheduler(eng, component.WithLogger(logger), component.WithRegistry(reg))
	components := component.NewRegistry(sched)

	def := bardfile.Definition(store, bardfile.WithLogger(logger))
	def.NativeShadow = cfg.Preview.NativeShadow
	if err := components.Define(def); err != nil {
		components.Close()
		return nil, err
	}

	s := &Server{
		config:     cfg,
		logger:     logger,
		store:      store,
		metrics:    reg,
		root:       root,
		sched:      sched,
		components: components,
		renderer: render.NewRenderer(render.RendererConfig{
			DeclarativeShadow: cfg.Preview.NativeShadow,
			OmitComments:      true,
		}),
	}
	if cfg.Preview.Live {
		s.live = NewLiveServer(logger)
	}
	sched.OnRender(s.rendered)

	hosts, err := components.Upgrade(root)
	if err != nil {
		components.Close()
		return nil, err
	}
	if len(hosts) == 0 {
		components.Close()
		return nil, errors.New(errors.ErrMarkup).
			WithDetail("The markup has no " + bardfile.Tag + " element").
			WithSuggestion("Add <" + bardfile.Tag + " name=\"...\"></" + bardfile.Tag + "> to the markup")
	}
	s.hosts = hosts

	if err := sched.Flush(context.Background()); err != nil {
		components.Close()
		return nil, err
	}

	s.router = s.routes()
	return s, nil
}

// routes builds the preview router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("bardfile/preview")))
	r.Use(middleware.Prometheus(middleware.WithRegistry(s.metrics)))

	r.Get("/", s.handlePage)
	r.Get("/state", s.handleState)
	r.Post("/files", s.handleAddFiles)
	r.Delete("/files/{index}", s.handleRemoveFile)
	r.Post("/files/{id}/events", s.handleUploadEvent)
	r.Mount("/blobs", blobs.Handler(s.store, blobs.WithHandlerLogger(s.logger)))
	if s.live != nil {
		r.Get("/live", s.live.HandleWebSocket)
	}
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	return r
}

// rendered runs after every render, with renders locked out.
func (s *Server) rendered(h *component.Host, err error) {
	if err != nil {
		s.logger.Error("preview render failed", "error", err)
	}
	markup, rerr := s.renderer.RenderToString(s.root)
	if rerr != nil {
		s.logger.Error("preview snapshot failed", "error", rerr)
		return
	}

	s.mu.Lock()
	s.snapshot = markup
	s.mu.Unlock()

	if s.live != nil {
		s.live.Broadcast(markup)
	}
}

// Handler returns the preview HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Snapshot returns the markup of the last render.
func (s *Server) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Live returns the live server, or nil when live updates are disabled.
func (s *Server) Live() *LiveServer {
	return s.live
}

// Fields returns the upgraded fields in document order.
func (s *Server) Fields() []*bardfile.Field {
	fields := make([]*bardfile.Field, 0, len(s.hosts))
	for _, h := range s.hosts {
		if f, ok := h.Component().(*bardfile.Field); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Start renders queued updates in the background and serves HTTP until ctx
// is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.sched.Start(ctx)
	s.logger.Info("preview server running", "url", s.config.URL())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		<-errCh
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the HTTP server down and stops rendering.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	srv := s.httpServer
	s.mu.Unlock()

	if s.live != nil {
		s.live.Close()
	}
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("preview shutdown", "error", err)
		}
	}
	s.sched.Close()
}

// Close releases the fields. The server must not be used afterwards.
func (s *Server) Close() {
	s.Stop()
	s.sched.Close()
	s.components.Close()
}
