package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/h2server"
	h2http "github.com/sagarc03/h2server/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// DefaultMaxLength is the default maximum request body length (20 MiB).
const DefaultMaxLength = 20 * 1024 * 1024

// Config is the root configuration struct for h2server.
type Config struct {
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Files    FilesConfig       `mapstructure:"files" yaml:"files"`
	Proxy    string            `mapstructure:"proxy" yaml:"proxy" validate:"omitempty,url"`
	Redirect string            `mapstructure:"redirect" yaml:"redirect"`
	Routes   []RouteConfig     `mapstructure:"routes" yaml:"routes" validate:"dive"`
	Render   RenderConfig      `mapstructure:"render" yaml:"render"`
	Browser  BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	CORS     h2http.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Metrics  MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	// URL is a port, host:port or full URL; it overrides Address, Port and RootPath.
	URL       string `mapstructure:"url" yaml:"url"`
	Address   string `mapstructure:"address" yaml:"address"`
	Port      int    `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	RootPath  string `mapstructure:"root_path" yaml:"root_path" validate:"omitempty,startswith=/"`
	HTTPS     bool   `mapstructure:"https" yaml:"https"`
	HTTP2     bool   `mapstructure:"http2" yaml:"http2"`
	Cert      string `mapstructure:"cert" yaml:"cert"`
	Key       string `mapstructure:"key" yaml:"key"`
	MaxLength int64  `mapstructure:"max_length" yaml:"max_length" validate:"min=0"`
}

// FilesConfig holds the served trees.
type FilesConfig struct {
	Root          string   `mapstructure:"root" yaml:"root" validate:"required"`
	Static        string   `mapstructure:"static" yaml:"static"`
	Index         []string `mapstructure:"index" yaml:"index" validate:"dive,required,excludesall=/\\"`
	DirectoryList bool     `mapstructure:"directory_list" yaml:"directory_list"`
}

// RouteConfig declares an extra route ahead of the built-in ones. Match is
// required: a route without a pattern is a configuration error here.
type RouteConfig struct {
	Match    string `mapstructure:"match" yaml:"match" validate:"required"`
	Proxy    string `mapstructure:"proxy" yaml:"proxy" validate:"omitempty,url"`
	Redirect string `mapstructure:"redirect" yaml:"redirect"`
	Static   string `mapstructure:"static" yaml:"static"`
	Break    bool   `mapstructure:"break" yaml:"break"`
}

// RenderConfig selects the extensions handed to rendering collaborators.
// An empty extension disables that renderer.
type RenderConfig struct {
	TemplateExt     string   `mapstructure:"template_ext" yaml:"template_ext" validate:"omitempty,startswith=."`
	ScriptExt       string   `mapstructure:"script_ext" yaml:"script_ext" validate:"omitempty,startswith=."`
	Interpreter     string   `mapstructure:"interpreter" yaml:"interpreter"`
	InterpreterArgs []string `mapstructure:"interpreter_args" yaml:"interpreter_args"`
}

// BrowserConfig controls opening a browser after startup.
type BrowserConfig struct {
	Open   bool   `mapstructure:"open" yaml:"open"`
	Path   string `mapstructure:"path" yaml:"path"`
	Client string `mapstructure:"client" yaml:"client"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path" validate:"omitempty,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format   string `mapstructure:"format" yaml:"format" validate:"required,oneof=pretty json"`
	Requests bool   `mapstructure:"requests" yaml:"requests"`
	UTC      bool   `mapstructure:"utc" yaml:"utc"`
	IP       bool   `mapstructure:"ip" yaml:"ip"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":        "server.url",
	"address":     "server.address",
	"port":        "server.port",
	"root-path":   "server.root_path",
	"ssl":         "server.https",
	"http2":       "server.http2",
	"cert":        "server.cert",
	"key":         "server.key",
	"max-length":  "server.max_length",
	"cwd":         "files.root",
	"static":      "files.static",
	"index":       "files.index",
	"proxy":       "proxy",
	"redirect":    "redirect",
	"open":        "browser.open",
	"open-url":    "browser.path",
	"open-client": "browser.client",
	"utc":         "log.utc",
	"log":         "log.requests",
	"log-ip":      "log.ip",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Only bind if the flag was explicitly set
		if !f.Changed {
			return
		}

		if f.Name == "no-dir" {
			v.Set("files.directory_list", f.Value.String() != "true")
			return
		}

		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		_ = v.BindPFlag(viperKey, f)
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "")
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 0) // 0 picks a free port
	v.SetDefault("server.root_path", "/")
	v.SetDefault("server.https", false)
	v.SetDefault("server.http2", false)
	v.SetDefault("server.cert", "")
	v.SetDefault("server.key", "")
	v.SetDefault("server.max_length", DefaultMaxLength)

	v.SetDefault("files.root", ".")
	v.SetDefault("files.static", "")
	v.SetDefault("files.index", []string{"index.html", "index.htm"})
	v.SetDefault("files.directory_list", true)

	v.SetDefault("proxy", "")
	v.SetDefault("redirect", "")

	v.SetDefault("render.template_ext", ".tmpl")
	v.SetDefault("render.script_ext", ".cgi")
	v.SetDefault("render.interpreter", "")

	v.SetDefault("browser.open", false)
	v.SetDefault("browser.path", "")
	v.SetDefault("browser.client", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", h2http.DefaultMetricsPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("log.requests", false)
	v.SetDefault("log.utc", false)
	v.SetDefault("log.ip", false)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("h2server")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("H2SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if _, err := cfg.Server.Endpoint(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Endpoint is the resolved listen address and public base URL.
type Endpoint struct {
	Scheme   string
	Addr     string
	BasePath string
}

// URL returns the URL users should open, with addr substituted for the
// configured address once the listener is bound.
func (e Endpoint) URL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		addr = net.JoinHostPort("localhost", port)
	}
	return (&url.URL{Scheme: e.Scheme, Host: addr, Path: e.BasePath}).String()
}

// Endpoint resolves URL, Address, Port and RootPath into a listen address.
//
// URL accepts "8080", "localhost:8080", "https://0.0.0.0:8443/app/" and
// similar forms; HTTPS is implied by an https scheme.
func (s ServerConfig) Endpoint() (Endpoint, error) {
	ep := Endpoint{
		Scheme:   "http",
		Addr:     net.JoinHostPort(s.Address, strconv.Itoa(s.Port)),
		BasePath: s.RootPath,
	}

	raw := strings.TrimSpace(s.URL)
	switch {
	case raw == "":
	case isPort(raw):
		ep.Addr = net.JoinHostPort(s.Address, raw)
	default:
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return Endpoint{}, fmt.Errorf("parse server url: %w: %w", h2server.ErrInvalidInput, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return Endpoint{}, fmt.Errorf("parse server url: %w: unsupported scheme %q", h2server.ErrInvalidInput, u.Scheme)
		}

		ep.Scheme = u.Scheme
		host, port := u.Hostname(), u.Port()
		if host == "" {
			host = s.Address
		}
		if port == "" {
			port = strconv.Itoa(s.Port)
		}
		ep.Addr = net.JoinHostPort(host, port)
		if u.Path != "" {
			ep.BasePath = u.Path
		}
	}

	if s.HTTPS {
		ep.Scheme = "https"
	}

	ep.BasePath = h2server.CleanPath(ep.BasePath)
	if !strings.HasSuffix(ep.BasePath, "/") {
		ep.BasePath += "/"
	}

	return ep, nil
}

func isPort(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 65535
}
