// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"httpfetch/internal/model"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/httpfetch/config.toml",
	"configs/config.toml",
}

// reservedRoutes are served by the HTTP front and cannot host metrics.
var reservedRoutes = []string{"/fetch", "/healthz", "/proxy/status"}

// CLI holds the global command-line arguments parsed by Kong.
// The proxy flags mirror the conventional http.proxy* settings and are read
// from the environment when not given on the command line.
type CLI struct {
	Config   string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host     string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port     int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	LogLevel string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`

	ProxySet      string `kong:"help='Enable the proxy: true|false (overrides config).',env='HTTP_PROXY_SET'"`
	ProxyHost     string `kong:"help='Proxy host (overrides config).',env='HTTP_PROXY_HOST'"`
	ProxyPort     string `kong:"help='Proxy port (overrides config).',env='HTTP_PROXY_PORT'"`
	ProxyUser     string `kong:"help='Proxy username (overrides config).',env='HTTP_PROXY_USER'"`
	ProxyPassword string `kong:"help='Proxy password (overrides config).',env='HTTP_PROXY_PASSWORD'"`
	NonProxyHosts string `kong:"help='Pipe-separated hosts that bypass the proxy (overrides config).',env='HTTP_NON_PROXY_HOSTS'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Fetch   FetchConfig   `toml:"fetch"`
	Proxy   ProxyConfig   `toml:"proxy"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8000); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// FetchConfig holds defaults for outbound requests.
type FetchConfig struct {
	TimeoutMillis int `toml:"timeout_ms"`
}

// ProxyConfig holds forward proxy settings.
type ProxyConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	// Port may be a TOML integer or a string. Anything that does not resolve
	// to an integer falls back to port 80.
	Port          any    `toml:"port"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	NonProxyHosts string `toml:"non_proxy_hosts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/httpfetch/config.toml then configs/config.toml, and falls back to
// defaults when neither exists.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
	if cli.ProxySet != "" {
		c.Proxy.Enabled = strings.EqualFold(strings.TrimSpace(cli.ProxySet), "true")
	}
	if cli.ProxyHost != "" {
		c.Proxy.Host = cli.ProxyHost
	}
	if cli.ProxyPort != "" {
		c.Proxy.Port = cli.ProxyPort
	}
	if cli.ProxyUser != "" {
		c.Proxy.User = cli.ProxyUser
	}
	if cli.ProxyPassword != "" {
		c.Proxy.Password = cli.ProxyPassword
	}
	if cli.NonProxyHosts != "" {
		c.Proxy.NonProxyHosts = cli.NonProxyHosts
	}
}

func (c *Config) validate() error {
	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Fetch.TimeoutMillis < 0 {
		return fmt.Errorf("fetch.timeout_ms must be non-negative; got %d", c.Fetch.TimeoutMillis)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range reservedRoutes {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 1024 * 1024 // 1 MB
	}
	if c.Fetch.TimeoutMillis == 0 {
		c.Fetch.TimeoutMillis = 5000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Settings resolves the proxy section into the settings used by the executor.
// A disabled proxy yields the zero value. A port that is not a valid integer
// is logged and replaced by model.DefaultProxyPort.
func (p ProxyConfig) Settings(logger *slog.Logger) model.ProxySettings {
	if !p.Enabled {
		return model.ProxySettings{}
	}

	port, ok := p.port()
	if !ok {
		logger.Warn("invalid proxy port, using default",
			"port", p.Port,
			"default", model.DefaultProxyPort,
		)
	}

	return model.ProxySettings{
		Host:          p.Host,
		Port:          port,
		User:          p.User,
		Password:      p.Password,
		NonProxyHosts: p.NonProxyHosts,
	}
}

// port resolves Port. It reports false for values that are present but not an
// integer; an absent or blank port yields the default.
func (p ProxyConfig) port() (int, bool) {
	switch v := p.Port.(type) {
	case nil:
		return model.DefaultProxyPort, true
	case int64:
		return int(v), true
	case int:
		return v, true
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return model.DefaultProxyPort, true
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.DefaultProxyPort, false
		}
		return n, true
	default:
		return model.DefaultProxyPort, false
	}
}

// WarnPermissions logs a warning if the config file is readable by group or others.
// The file may hold proxy credentials.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
