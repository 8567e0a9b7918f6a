package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
)

const (
	// ConfigName is the base name of the configuration file. Load accepts
	// vroute.json, vroute.yaml and vroute.yml.
	ConfigName = "vroute"

	// ConfigFileName is the file written by a new project.
	ConfigFileName = "vroute.json"

	// EnvPrefix prefixes environment overrides (VROUTE_SERVER_PORT).
	EnvPrefix = "VROUTE"

	// DefaultPort is the default port of "vroute serve".
	DefaultPort = 8080

	// DefaultHost is the default host of "vroute serve".
	DefaultHost = "localhost"

	// DefaultMaxRedirects bounds redirect chains.
	DefaultMaxRedirects = 10

	// DefaultHistoryPath is the default SQLite file for persistent history.
	DefaultHistoryPath = ".vroute/history.db"

	// DefaultHistoryKey names the saved history stack.
	DefaultHistoryKey = "default"

	// DefaultWriteTimeout bounds each history frame write.
	DefaultWriteTimeout = "10s"
)

// History modes.
const (
	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
)

// Config represents the vroute configuration file.
type Config struct {
	// Name is the application name.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// Routes are the route declarations, in registration order.
	// When empty, the CLI uses the built-in journal routes.
	Routes []router.Definition `json:"routes,omitempty" yaml:"routes,omitempty" mapstructure:"routes"`

	// NotFoundView is the view reported for unmatched locations.
	NotFoundView string `json:"notFoundView,omitempty" yaml:"notFoundView,omitempty" mapstructure:"notFoundView"`

	// MaxRedirects bounds the redirects one navigation may follow.
	MaxRedirects int `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty" mapstructure:"maxRedirects"`

	// History configures the history adapter used by the CLI.
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`

	// Server configures "vroute serve".
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Log configures logging.
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// HistoryConfig configures history persistence.
type HistoryConfig struct {
	// Mode is "memory" or "sqlite".
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`

	// Path is the SQLite database file, relative to the config directory.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`

	// Key names the saved stack.
	Key string `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
}

// ServerConfig configures the history socket server.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`

	// WriteTimeout bounds each frame write (e.g., "10s").
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty" mapstructure:"writeTimeout"`

	// AllowedOrigins lists the origins allowed to open a history socket.
	// Empty allows same-origin requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty" mapstructure:"allowedOrigins"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty" mapstructure:"metrics"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		MaxRedirects: DefaultMaxRedirects,
		History: HistoryConfig{
			Mode: HistoryMemory,
			Path: DefaultHistoryPath,
			Key:  DefaultHistoryKey,
		},
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			WriteTimeout: DefaultWriteTimeout,
			Metrics:      true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// newViper returns a viper instance carrying every default, so that each
// key can be overridden from the environment.
func newViper() *viper.Viper {
	d := New()
	v := viper.New()
	v.SetDefault("maxRedirects", d.MaxRedirects)
	v.SetDefault("notFoundView", "")
	v.SetDefault("history.mode", d.History.Mode)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.key", d.History.Key)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the specified directory.
// It looks for vroute.json, vroute.yaml or vroute.yml in the directory.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.New("R030").
				WithDetail("No vroute.json or vroute.yaml found in " + dir).
				WithSuggestion("Run 'vroute init' to write a default configuration")
		}
		return nil, errors.New("R031").WithDetail(err.Error()).Wrap(err)
	}
	return decode(v, v.ConfigFileUsed())
}

// LoadFile reads configuration from the specified file path.
// The format follows the extension.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R030").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("R031").Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New("R031").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON or YAML").
			Wrap(err)
	}
	return decode(v, path)
}

// FromEnv returns the defaults with environment overrides applied, for
// running without a configuration file.
func FromEnv() (*Config, error) {
	return decode(newViper(), "")
}

func decode(v *viper.Viper, path string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("R031").WithDetail(err.Error()).Wrap(err)
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path: YAML for .yaml
// and .yml files, JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("R031").Wrap(err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New("R031").Wrap(err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("R031").Wrap(err)
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
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}

	if c.History.Mode == "" {
		c.History.Mode = HistoryMemory
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}
	if c.History.Key == "" {
		c.History.Key = DefaultHistoryKey
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid. Route declarations are
// validated by building a registry from them.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("R032").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.MaxRedirects < 0 {
		return errors.New("R032").
			WithDetail("maxRedirects must not be negative")
	}
	switch c.History.Mode {
	case HistoryMemory, HistorySQLite:
	default:
		return errors.New("R032").
			WithDetailf("history.mode %q is not one of memory, sqlite", c.History.Mode)
	}
	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		return errors.New("R032").
			WithDetailf("server.writeTimeout %q is not a duration", c.Server.WriteTimeout).
			WithSuggestion(`Use a Go duration such as "10s" or "500ms"`)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("R032").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("R032").
			WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	}
	if len(c.Routes) > 0 {
		if _, err := router.NewRegistry(c.Routes...); err != nil {
			return err
		}
	}
	return nil
}

// Address returns the listen address of "vroute serve".
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// WriteTimeout returns Server.WriteTimeout as a duration, or the default
// when it does not parse.
func (c *Config) WriteTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Server.WriteTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultWriteTimeout)
	return d
}

// HistoryPath returns the SQLite file path, resolved against the config
// directory when relative.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(c.Dir(), c.History.Path)
}

// SlogLevel returns the configured slog level. Unknown levels are info.
func (c LogConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Level)
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
