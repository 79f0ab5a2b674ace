package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/sitecheck/internal/store"
	"github.com/jpalmerr/sitecheck/registry"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Site Status"

	// labelUnknown is shown for URLs the first sweep has not reached yet.
	labelUnknown = "unknown"

	// submittedField is the form field read by POST /result.
	submittedField = "submitted"
)

// Config holds the settings for a [Server].
type Config struct {
	// Port is the TCP port to listen on. Zero picks a free port.
	Port int

	// Title is shown on every page. Defaults to "Site Status".
	Title string

	// Assets holds assets/index.html and assets/result.html. When nil the
	// HTML pages answer 500 and the JSON routes keep working.
	Assets fs.FS

	// Gatherer backs GET /metrics. When nil the route is not mounted.
	Gatherer prometheus.Gatherer

	// Logger receives request and server events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server handles HTTP requests for the status pages and API.
//
// Routes:
//   - GET /: All groups with each URL's current label
//   - GET /api: The current results as a flat JSON object
//   - POST /result: Looks up the submitted URL
//   - GET /api/events: Server-Sent Events stream of published sweeps
//   - GET /healthz: Liveness probe
//   - GET /metrics: Prometheus exposition
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store    store.Store
	registry *registry.Registry
	port     int
	title    string
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	index  *template.Template
	result *template.Template

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
}

// NewServer creates a new HTTP [Server] reading results from st and group
// membership from reg.
//
// Templates are parsed here; a parse failure is logged and the HTML routes
// answer 500. The server is not started until [Server.Start] is called.
func NewServer(st store.Store, reg *registry.Registry, cfg Config) *Server {
	s := &Server{
		store:    st,
		registry: reg,
		port:     cfg.Port,
		title:    cfg.Title,
		gatherer: cfg.Gatherer,
		logger:   cfg.Logger,
	}
	if s.title == "" {
		s.title = defaultTitle
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if cfg.Assets != nil {
		var err error
		if s.index, err = template.ParseFS(cfg.Assets, "assets/index.html"); err != nil {
			s.logger.Error("failed to parse dashboard template", "error", err)
		}
		if s.result, err = template.ParseFS(cfg.Assets, "assets/result.html"); err != nil {
			s.logger.Error("failed to parse result template", "error", err)
		}
	}
	return s
}

// Handler returns the router with every route and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/result", s.handleResult)
	r.Get("/api", s.handleAPI)
	r.Get("/api/events", s.handleSSE)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.logger.Info("http listening", "addr", ln.Addr().String())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

type entryView struct {
	URL   string
	Label string
	Class string
}

type groupView struct {
	Name    string
	Entries []entryView
}

type indexView struct {
	Title     string
	Groups    []groupView
	Updated   bool
	UpdatedAt time.Time
}

type resultView struct {
	Title      string
	Normalized string
	Found      bool
	Groups     []string
	Label      string
	Class      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()

	view := indexView{
		Title:     s.title,
		Updated:   !snap.IsZero(),
		UpdatedAt: snap.CompletedAt,
	}
	for _, g := range s.registry.Groups() {
		gv := groupView{Name: g.Name, Entries: make([]entryView, 0, len(g.URLs))}
		for _, u := range g.URLs {
			label := labelFor(snap, u)
			gv.Entries = append(gv.Entries, entryView{URL: u, Label: label, Class: labelClass(label)})
		}
		view.Groups = append(view.Groups, gv)
	}

	s.render(w, s.index, view)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	found, normalized := s.registry.Lookup(r.PostForm.Get(submittedField))
	view := resultView{
		Title:      s.title,
		Normalized: normalized,
		Found:      found,
	}
	if found {
		view.Groups = s.registry.GroupsOf(normalized)
		view.Label = labelFor(s.store.Current(), normalized)
		view.Class = labelClass(view.Label)
	}

	s.render(w, s.result, view)
}

// handleAPI returns the current results as a flat JSON object.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	results := s.store.Current().Results

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(results); err != nil {
		s.logger.Error("failed to encode api response", "error", err)
	}
}

// handleSSE streams published sweeps via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(snap store.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}

		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}

		// ResponseController.Flush respects the write deadline
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// subscribe before reading the current snapshot so no publish is missed
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	cur := s.store.Current()
	sent := cur.Seq
	if err := writeAndFlush(cur); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if snap.Seq <= sent {
				continue
			}
			sent = snap.Seq
			if err := writeAndFlush(snap); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

// render executes tmpl into a buffer so a template error never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	if tmpl == nil {
		http.Error(w, "Page not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render template", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write html response", "error", err)
	}
}

// logRequests logs one line per request once the response is written.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func labelFor(snap store.Snapshot, url string) string {
	if label, ok := snap.Results[url]; ok {
		return label
	}
	return labelUnknown
}

// labelClass picks the CSS class for a label.
func labelClass(label string) string {
	if len(label) == 3 {
		switch label[0] {
		case '2', '3':
			return "up"
		case '4':
			return "warn"
		case '5':
			return "down"
		}
	}
	if label == labelUnknown {
		return "pending"
	}
	return "down"
}
