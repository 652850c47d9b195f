package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/dragsort/pkg/dom"
)

// Server is the HTTP/WebSocket server for drag-and-drop boards.
type Server struct {
	config   *Config
	router   chi.Router
	upgrader websocket.Upgrader
	metrics  *Metrics

	// page is the parsed board page served on GET /.
	page *dom.Document

	mu    sync.Mutex
	conns map[*wsConn]struct{}

	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server. The board page and selectors are checked up front
// by building a probe board, so configuration errors surface here rather
// than on the first connection.
func New(config *Config) (*Server, error) {
	config = config.withDefaults()
	logger := config.Logger.With("component", "server")

	page, err := dom.ParseString(config.Board.Page)
	if err != nil {
		return nil, err
	}
	if err := injectClient(page); err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		metrics: NewMetrics(config.Registry),
		page:    page,
		conns:   make(map[*wsConn]struct{}),
		logger:  logger,
	}

	probe, err := NewBoard(BoardOptions{
		ID:            "probe",
		Config:        config.Board,
		ViewportWidth: config.ViewportWidth,
		Metrics:       s.metrics,
		Logger:        config.Logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("board page validated", "draggables", probe.Group().Len())
	probe.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get(ClientPath, s.handleClient)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{}))
	s.router = r

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ActiveBoards returns the number of open board connections.
func (s *Server) ActiveBoards() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every board connection and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.shutdown()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Render(w); err != nil {
		s.logger.Error("render page failed", "error", err,
			"request_id", middleware.GetReqID(r.Context()))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"boards": s.ActiveBoards(),
	})
}

func (s *Server) track(c *wsConn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.activeBoards.Inc()
}

func (s *Server) untrack(c *wsConn) {
	s.mu.Lock()
	_, ok := s.conns[c]
	delete(s.conns, c)
	s.mu.Unlock()
	if ok {
		s.metrics.activeBoards.Dec()
	}
}

// newBoardID returns a random 16-character hex id.
func newBoardID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "board-" + time.Now().Format("150405.000000")
	}
	return hex.EncodeToString(b[:])
}
