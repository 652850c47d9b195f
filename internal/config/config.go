package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"

	"github.com/vango-dev/dragsort/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dragsort.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultElements selects draggable elements when none is configured.
	DefaultElements = "[data-draggable]"

	// DefaultContainers selects drop regions when none is configured.
	DefaultContainers = "[data-dropzone]"

	// DefaultMaxMessageSize is the largest accepted websocket message.
	DefaultMaxMessageSize = 64 * 1024

	// DefaultViewportWidth is used until a client reports its own.
	DefaultViewportWidth = 1024
)

// Config represents the complete dragsort.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server contains HTTP and websocket settings.
	Server ServerConfig `json:"server,omitempty"`

	// Board describes the page and its drag-and-drop wiring.
	Board BoardConfig `json:"board,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// ReadTimeout and WriteTimeout are Go durations ("10s").
	ReadTimeout  string `json:"readTimeout,omitempty"`
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// PingInterval is how often idle connections are pinged.
	PingInterval string `json:"pingInterval,omitempty"`

	// MaxMessageSize limits a single websocket message in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// ViewportWidth is the layout width before a client says otherwise.
	ViewportWidth int `json:"viewportWidth,omitempty"`

	// AllowedOrigins restricts websocket upgrades. Empty allows same-origin
	// requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// BoardConfig describes the served board.
type BoardConfig struct {
	// Page is the HTML file served as the board, relative to the config
	// file. Empty serves the built-in demo board.
	Page string `json:"page,omitempty"`

	// Elements, Anchors and Containers are CSS selectors. Anchors is
	// queried inside each element; empty makes the whole element the
	// anchor.
	Elements   string `json:"elements,omitempty"`
	Anchors    string `json:"anchors,omitempty"`
	Containers string `json:"containers,omitempty"`

	// Placeholder is markup for the drop marker.
	Placeholder string `json:"placeholder,omitempty"`

	DraggingClass string `json:"draggingClass,omitempty"`
	HoveringClass string `json:"hoveringClass,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for dragsort.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No dragsort.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'dragsort init' or create dragsort.json manually")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse dragsort.json: " + err.Error()).
			WithSuggestion("Check that dragsort.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "60s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = "30s"
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Server.ViewportWidth == 0 {
		c.Server.ViewportWidth = DefaultViewportWidth
	}

	// Board
	if c.Board.Elements == "" {
		c.Board.Elements = DefaultElements
	}
	if c.Board.Containers == "" {
		c.Board.Containers = DefaultContainers
	}
	if c.Board.DraggingClass == "" {
		c.Board.DraggingClass = "dragging"
	}
	if c.Board.HoveringClass == "" {
		c.Board.HoveringClass = "hovering"
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetailf("Port %d is outside 0-65535", c.Server.Port)
	}

	durations := map[string]string{
		"server.readTimeout":  c.Server.ReadTimeout,
		"server.writeTimeout": c.Server.WriteTimeout,
		"server.pingInterval": c.Server.PingInterval,
	}
	for field, v := range durations {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return errors.New("E120").
				WithDetailf("%s: %q is not a positive duration", field, v).
				WithSuggestion(`Use Go duration syntax such as "10s" or "1m"`)
		}
	}

	if c.Server.MaxMessageSize < 0 {
		return errors.New("E120").WithDetail("server.maxMessageSize must not be negative")
	}
	if c.Server.ViewportWidth < 0 {
		return errors.New("E120").WithDetail("server.viewportWidth must not be negative")
	}

	if strings.TrimSpace(c.Board.Elements) == "" {
		return errors.New("E121").WithDetail("board.elements is empty")
	}
	selectors := []struct{ field, sel string }{
		{"board.elements", c.Board.Elements},
		{"board.anchors", c.Board.Anchors},
		{"board.containers", c.Board.Containers},
	}
	for _, s := range selectors {
		if s.sel == "" {
			continue
		}
		if _, err := cascadia.Compile(s.sel); err != nil {
			return errors.New("E206").
				WithDetailf("%s: %q: %v", s.field, s.sel, err)
		}
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("E123").
			WithDetailf("Unknown log level %q", c.Log.Level).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E123").
			WithDetailf("Unknown log format %q", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the board URL.
func (c *Config) URL() string {
	return "http://" + c.Address() + "/"
}

// PagePath returns the absolute path to the board page, or "" for the
// built-in board.
func (c *Config) PagePath() string {
	if c.Board.Page == "" {
		return ""
	}
	if filepath.IsAbs(c.Board.Page) {
		return c.Board.Page
	}
	return filepath.Join(c.Dir(), c.Board.Page)
}

// ReadTimeout returns server.readTimeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, 60*time.Second)
}

// WriteTimeout returns server.writeTimeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 10*time.Second)
}

// PingInterval returns server.pingInterval as a duration.
func (c *Config) PingInterval() time.Duration {
	return durationOr(c.Server.PingInterval, 30*time.Second)
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing dragsort.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No dragsort.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'dragsort init' to create one")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor containing dragsort.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
