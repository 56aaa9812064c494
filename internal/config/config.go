// Package config handles loading and validating the dictado configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration for the dictado daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Processor   ProcessorConfig   `mapstructure:"processor"`
	Transcriber TranscriberConfig `mapstructure:"transcriber"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`

	// AllowedOrigins restricts browser origins for CORS and WebSocket
	// handshakes. Empty allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProcessorConfig tunes the command pipeline.
type ProcessorConfig struct {
	Timezone string `mapstructure:"timezone"` // IANA name, dates are computed in it
	Currency string `mapstructure:"currency"` // ISO 4217 code stamped on money results
	Language string `mapstructure:"language"` // ISO-639-1 hint for the transcriber
}

// TranscriberConfig selects and configures the speech-to-text backend.
type TranscriberConfig struct {
	Backend string        `mapstructure:"backend"` // "none", "whisper" or "wyoming"
	Timeout time.Duration `mapstructure:"timeout"`
	Whisper WhisperConfig `mapstructure:"whisper"`
	Wyoming WyomingConfig `mapstructure:"wyoming"`
}

// WhisperConfig holds settings for a Whisper-compatible HTTP endpoint.
type WhisperConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Type      string `mapstructure:"type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	Model     string `mapstructure:"model"`
	VADFilter bool   `mapstructure:"vad_filter"`
	APIKey    string `mapstructure:"api_key"`
}

// WyomingConfig holds settings for a Wyoming protocol ASR server.
type WyomingConfig struct {
	Endpoint string `mapstructure:"endpoint"` // host:port
}

// RateLimitConfig bounds how many commands one client may send.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"` // 0 disables limiting
	Burst             int `mapstructure:"burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// FlagBinding maps a command-line flag onto a config key. The flag only
// overrides file and environment values when it was set explicitly.
type FlagBinding struct {
	Key  string
	Flag *pflag.Flag
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./dictado.yaml, ./configs/dictado.yaml, /etc/dictado/dictado.yaml.
func Load(configFile string, flags ...FlagBinding) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, b := range flags {
		if b.Flag == nil {
			continue
		}
		if err := v.BindPFlag(b.Key, b.Flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", b.Flag.Name, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dictado")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/dictado")
	}

	// Environment variables: DICTADO_SERVER_HEALTH_PORT, DICTADO_TRANSCRIBER_BACKEND, etc.
	v.SetEnvPrefix("DICTADO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${WHISPER_API_KEY}")
	cfg.Transcriber.Whisper.APIKey = resolveEnvRef(cfg.Transcriber.Whisper.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 5000)
	v.SetDefault("transports.http.allowed_origins", []string{})
	v.SetDefault("processor.timezone", "America/Santiago")
	v.SetDefault("processor.currency", "CLP")
	v.SetDefault("processor.language", "es")
	v.SetDefault("transcriber.backend", "none")
	v.SetDefault("transcriber.timeout", 30*time.Second)
	v.SetDefault("transcriber.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("transcriber.whisper.type", "openai")
	v.SetDefault("transcriber.whisper.model", "")
	v.SetDefault("transcriber.whisper.vad_filter", false)
	v.SetDefault("transcriber.whisper.api_key", "")
	v.SetDefault("transcriber.wyoming.endpoint", "localhost:10300")
	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks values that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	switch c.Transcriber.Backend {
	case "", "none", "whisper", "wyoming":
	default:
		return fmt.Errorf("%w: unknown transcriber backend %q", ErrInvalidConfig, c.Transcriber.Backend)
	}
	if _, err := time.LoadLocation(c.Processor.Timezone); err != nil {
		return fmt.Errorf("%w: processor.timezone: %w", ErrInvalidConfig, err)
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: ratelimit values must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Location returns the processor time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Processor.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config, writing to stdout.
func SetupLogging(cfg LoggingConfig) {
	SetupLoggingTo(cfg, os.Stdout)
}

// SetupLoggingTo is SetupLogging with an explicit destination. One-shot CLI
// commands log to stderr so their stdout stays machine readable.
func SetupLoggingTo(cfg LoggingConfig, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
