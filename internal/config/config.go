// Package config loads gonfsd's runtime configuration the way the
// reference control plane did: viper layers CLI flags over environment
// variables over a config file over built-in defaults, and
// go-playground/validator enforces the result before any subsystem sees it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lunixbochs/gonfsd/internal/bytesize"
	"github.com/lunixbochs/gonfsd/internal/logger"
	"github.com/lunixbochs/gonfsd/internal/telemetry"
)

// envPrefix namespaces every environment variable this binary reads, e.g.
// GONFSD_SERVER_LISTEN_ADDR.
const envPrefix = "GONFSD"

// Config is gonfsd's complete runtime configuration. It deliberately omits
// the reference control plane's Database, ControlPlane API, and
// WAL-backed Cache sections — those back a multi-protocol storage service
// this server doesn't run.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// ServerConfig controls the NFSv3/MOUNT/PORTMAP listeners and the export
// they serve.
type ServerConfig struct {
	ListenAddr    string            `mapstructure:"listen_addr" validate:"required"`
	ExportName    string            `mapstructure:"export_name" validate:"required"`
	MaxRecordSize bytesize.ByteSize `mapstructure:"max_record_size" validate:"required,gt=0"`

	// RequirePrivilegedSourcePort rejects client connections whose source
	// port is not below 1024, the traditional "trusted host" signal some
	// NFS deployments still require from their clients.
	RequirePrivilegedSourcePort bool `mapstructure:"require_privileged_source_port"`

	// ReadOnly mounts the export's back-end without write capability,
	// rejecting every mutating NFSv3 procedure at the handler layer.
	ReadOnly bool `mapstructure:"read_only"`
}

// LoggingConfig mirrors internal/logger.Config with validation tags; the
// two are kept separate so internal/logger never needs to import
// go-playground/validator just to be configured.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
	Output string `mapstructure:"output"`
}

func (l LoggingConfig) toLoggerConfig() logger.Config {
	return logger.Config{Level: l.Level, Format: l.Format, Output: l.Output}
}

// TelemetryConfig mirrors internal/telemetry.Config.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	Endpoint       string  `mapstructure:"endpoint"`
	Insecure       bool    `mapstructure:"insecure"`
	SampleRate     float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func (t TelemetryConfig) toTelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        t.Enabled,
		ServiceName:    t.ServiceName,
		ServiceVersion: t.ServiceVersion,
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		SampleRate:     t.SampleRate,
	}
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required_if=Enabled true"`
	Path       string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// Default returns gonfsd's built-in configuration, the bottom layer of
// viper's precedence stack.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:                  ":2049",
			ExportName:                  "/export",
			MaxRecordSize:               bytesize.ByteSize(4 * bytesize.MiB),
			RequirePrivilegedSourcePort: false,
			ReadOnly:                    false,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:        telemetry.DefaultConfig().Enabled,
			ServiceName:    telemetry.DefaultConfig().ServiceName,
			ServiceVersion: telemetry.DefaultConfig().ServiceVersion,
			Endpoint:       telemetry.DefaultConfig().Endpoint,
			Insecure:       telemetry.DefaultConfig().Insecure,
			SampleRate:     telemetry.DefaultConfig().SampleRate,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9100",
			Path:       "/metrics",
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds a Config from, in increasing priority: built-in defaults,
// an optional YAML config file at path (ignored if path is empty and no
// file exists at the default location), environment variables prefixed
// GONFSD_ (nested fields use "_" in place of "."), and whatever flags the
// caller has already bound into v. The result is validated before return.
func Load(path string, v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	setDefaults(v, def)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gonfsd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gonfsd")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("config: read default config: %w", err)
			}
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(
		mapstructureTextUnmarshalerHook(),
	)
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("server.listen_addr", def.Server.ListenAddr)
	v.SetDefault("server.export_name", def.Server.ExportName)
	v.SetDefault("server.max_record_size", def.Server.MaxRecordSize.String())
	v.SetDefault("server.require_privileged_source_port", def.Server.RequirePrivilegedSourcePort)
	v.SetDefault("server.read_only", def.Server.ReadOnly)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)
	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.service_name", def.Telemetry.ServiceName)
	v.SetDefault("telemetry.service_version", def.Telemetry.ServiceVersion)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", def.Telemetry.SampleRate)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.listen_addr", def.Metrics.ListenAddr)
	v.SetDefault("metrics.path", def.Metrics.Path)
	v.SetDefault("shutdown_timeout", def.ShutdownTimeout.String())
}

// LoggerConfig adapts the loaded Logging section for internal/logger.Init.
func (c Config) LoggerConfig() logger.Config { return c.Logging.toLoggerConfig() }

// TelemetryConfig adapts the loaded Telemetry section for telemetry.Init.
func (c Config) TelemetryConfig() telemetry.Config { return c.Telemetry.toTelemetryConfig() }
