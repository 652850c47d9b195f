package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/vango-dev/dragsort/internal/config"
	"github.com/vango-dev/dragsort/internal/errors"
	"github.com/vango-dev/dragsort/pkg/server"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// load reads the project config and builds the logger. Without --config a
// missing dragsort.json falls back to defaults, which serve the demo board.
func (o *globalOptions) load(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := newLogger(stderr, cfg)
	slog.SetDefault(logger)
	if cfg.Path() == "" {
		logger.Debug("no dragsort.json found, using defaults")
	}
	return cfg, logger, nil
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		cfg, err := config.LoadFromWorkingDir()
		if errors.Code(err) == "E141" {
			return config.New(), nil
		}
		return cfg, err
	}

	info, err := os.Stat(o.configPath)
	if err == nil && info.IsDir() {
		return config.Load(o.configPath)
	}
	return config.LoadFile(o.configPath)
}

// newLogger builds a text or JSON slog handler at the configured level.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// boardConfig maps the board section, reading the page file if one is set.
func boardConfig(cfg *config.Config) (server.BoardConfig, error) {
	bc := server.BoardConfig{
		Elements:      cfg.Board.Elements,
		Anchors:       cfg.Board.Anchors,
		Containers:    cfg.Board.Containers,
		Placeholder:   cfg.Board.Placeholder,
		DraggingClass: cfg.Board.DraggingClass,
		HoveringClass: cfg.Board.HoveringClass,
	}
	if path := cfg.PagePath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return bc, errors.New("E121").
				WithDetailf("board.page %s cannot be read", path).
				WithSuggestion("Check the page path in dragsort.json").
				Wrap(err)
		}
		bc.Page = string(data)
	}
	return bc, nil
}

// serverConfig maps a project config onto server.Config.
func serverConfig(cfg *config.Config, logger *slog.Logger) (*server.Config, error) {
	bc, err := boardConfig(cfg)
	if err != nil {
		return nil, err
	}

	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.Board = bc
	sc.ViewportWidth = float64(cfg.Server.ViewportWidth)
	sc.MaxMessageSize = cfg.Server.MaxMessageSize
	sc.ReadTimeout = cfg.ReadTimeout()
	sc.WriteTimeout = cfg.WriteTimeout()
	sc.PingInterval = cfg.PingInterval()
	if len(cfg.Server.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}
	sc.Logger = logger
	return sc, nil
}
