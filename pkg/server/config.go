package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address for Run.
	Address string

	// Board describes the page and how its elements drag.
	Board BoardConfig

	// ViewportWidth is the layout width used until the client's Hello
	// reports its own.
	ViewportWidth float64

	// MaxMessageSize limits a single incoming WebSocket message.
	MaxMessageSize int64

	// HandshakeTimeout bounds the wait for the client's Hello.
	HandshakeTimeout time.Duration

	// ReadTimeout closes connections that stay silent this long.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings the client.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Registry receives the server's metrics and backs /metrics.
	// Default: a fresh registry per server.
	Registry *prometheus.Registry

	// TracerProvider creates the drag tracer.
	// Default: the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// BoardConfig selects the draggable parts of the page.
type BoardConfig struct {
	// Page is the board markup. Empty serves DemoPage.
	Page string

	// Elements, Anchors and Containers are CSS selectors. Anchors is
	// queried inside each element.
	Elements   string
	Anchors    string
	Containers string

	// Placeholder is markup for the drop marker.
	Placeholder string

	DraggingClass string
	HoveringClass string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address: "localhost:3000",
		Board: BoardConfig{
			Elements:      "[data-draggable]",
			Containers:    "[data-dropzone]",
			DraggingClass: "dragging",
			HoveringClass: "hovering",
		},
		ViewportWidth:    1024,
		MaxMessageSize:   64 * 1024,
		HandshakeTimeout: 5 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		CheckOrigin:      SameOriginCheck,
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		c = defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Board.Page == "" {
		out.Board.Page = DemoPage
	}
	if out.Board.Elements == "" {
		out.Board.Elements = defaults.Board.Elements
	}
	if out.ViewportWidth <= 0 {
		out.ViewportWidth = defaults.ViewportWidth
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.PingInterval <= 0 {
		out.PingInterval = defaults.PingInterval
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.Registry == nil {
		out.Registry = prometheus.NewRegistry()
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}

// AllowOrigins returns a CheckOrigin func accepting same-origin requests
// and the listed origins.
func AllowOrigins(origins ...string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if allowed[r.Header.Get("Origin")] {
			return true
		}
		return SameOriginCheck(r)
	}
}
