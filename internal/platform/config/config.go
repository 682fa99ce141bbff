// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	// DefaultServerPort is the default port the backoffice listens on.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize caps form submissions (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultAPIBaseURL is where the Zapallo API runs during local development.
	DefaultAPIBaseURL = "http://localhost:8000"

	// DefaultAPIPrefix is prepended to every resource path.
	DefaultAPIPrefix = "/api/v1"

	// DefaultAPITimeout bounds each API request unless a caller overrides it.
	DefaultAPITimeout = 30 * time.Second

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	envPrefix = "APP_"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	API       APIConfig       `koanf:"api"       validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Web       WebConfig       `koanf:"web"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	// RequestTimeout bounds one page request, including every API call it makes.
	// Zero disables it.
	RequestTimeout time.Duration `koanf:"request_timeout"  validate:"min=0"`
	MaxRequestSize int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// APIConfig locates the Zapallo API.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Prefix  string        `koanf:"prefix"   validate:"omitempty,startswith=/"`
	Timeout time.Duration `koanf:"timeout"  validate:"required,min=1ms"`
	APIKey  string        `koanf:"key"`
	Name    string        `koanf:"name"     validate:"required"`
}

// ClientConfig contains HTTP client settings for the API client.
type ClientConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// CircuitBreakerConfig contains circuit breaker settings. MaxFailures of zero
// disables the breaker.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"min=0"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required_with=MaxFailures,omitempty,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required_with=MaxFailures,omitempty,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// WebConfig contains backoffice UI settings.
type WebConfig struct {
	// OpenBrowser launches the dashboard in the default browser on startup.
	OpenBrowser bool `koanf:"open_browser"`
	// FlashCookie names the cookie carrying one-shot notices across redirects.
	FlashCookie string `koanf:"flash_cookie" validate:"required"`
}

// Addr returns the host:port the server binds to.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "zapallo-backoffice",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "45s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/backoffice.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "zapallo-backoffice",
		"telemetry.sampling_rate": 1.0,

		"api.base_url": DefaultAPIBaseURL,
		"api.prefix":   DefaultAPIPrefix,
		"api.timeout":  DefaultAPITimeout.String(),
		"api.key":      "",
		"api.name":     "zapallo-api",

		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"web.open_browser": false,
		"web.flash_cookie": "backoffice_flash",
	}
}

// legacyEnv maps the unprefixed variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"API_URL":     "api.base_url",
	"API_TIMEOUT": "api.timeout",
	"API_KEY":     "api.key",
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"port":        "server.port",
	"api-url":     "api.base_url",
	"api-timeout": "api.timeout",
	"api-key":     "api.key",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"open":        "web.open_browser",
}

// NewFlagSet declares the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("profile", "", "config profile to load from configs/<profile>.yaml")
	fs.Int("port", DefaultServerPort, "port to listen on")
	fs.String("api-url", DefaultAPIBaseURL, "base URL of the Zapallo API")
	fs.String("api-timeout", DefaultAPITimeout.String(), "API request timeout (duration or milliseconds)")
	fs.String("api-key", "", "API key sent as X-API-Key")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text, pretty)")
	fs.Bool("open", false, "open the dashboard in the default browser")

	return fs
}

type loadOptions struct {
	dir     string
	envFile string
	flags   *pflag.FlagSet
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithConfigDir sets the directory holding base.yaml and profile files.
func WithConfigDir(dir string) LoadOption {
	return func(o *loadOptions) { o.dir = dir }
}

// WithEnvFile sets the dotenv file to read. An empty path disables it.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) { o.envFile = path }
}

// WithFlags layers parsed command-line flags over every other source.
func WithFlags(fs *pflag.FlagSet) LoadOption {
	return func(o *loadOptions) { o.flags = fs }
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Command-line flags that were set explicitly
//  2. Environment variables (APP_ prefix, then API_URL/API_TIMEOUT/API_KEY)
//  3. The .env file
//  4. Profile config file (configs/{profile}.yaml)
//  5. Base config file (configs/base.yaml)
//  6. Default values
func Load(profile string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{dir: "configs", envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(o.dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(o.dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	envKeys := envKeyIndex(k.Keys())

	if err := loadDotEnv(k, o.envFile, envKeys); err != nil {
		return nil, fmt.Errorf("loading %s: %w", o.envFile, err)
	}

	if err := k.Load(env.Provider("API_", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading legacy env vars: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if o.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(o.flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}

			return key, posflag.FlagVal(o.flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config

	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				millisecondsHook,
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyIndex maps APP_ variable names onto known config keys. Deriving the
// name from the key keeps underscores inside a key segment (api.base_url ->
// APP_API_BASE_URL) unambiguous.
func envKeyIndex(keys []string) map[string]string {
	index := make(map[string]string, len(keys))
	for _, key := range keys {
		index[EnvVarName(key)] = key
	}

	return index
}

// EnvVarName returns the environment variable that overrides a config key.
func EnvVarName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// loadDotEnv reads a dotenv file without touching the process environment.
func loadDotEnv(k *koanf.Koanf, path string, envKeys map[string]string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	values := make(map[string]any, len(vars))
	for name, value := range vars {
		if key, ok := envKeys[name]; ok {
			values[key] = value
		} else if key, ok := legacyEnv[name]; ok {
			if _, set := values[key]; !set {
				values[key] = value
			}
		}
	}

	return k.Load(confmap.Provider(values, "."), nil)
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
