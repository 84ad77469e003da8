// Package config loads nvctl settings with Viper from defaults, an optional
// YAML file and NVCTL_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. NVCTL_OUTPUT_FORMAT.
const EnvPrefix = "NVCTL"

// Config is the complete nvctl configuration.
type Config struct {
	Driver  DriverConfig  `mapstructure:"driver" yaml:"driver"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// DriverConfig selects and prepares the driver module.
type DriverConfig struct {
	Library        string `mapstructure:"library" yaml:"library"`                 // empty means the platform default
	SkipInitialize bool   `mapstructure:"skip_initialize" yaml:"skip_initialize"` // host already initialized the api
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // table or yaml
	Color  string `mapstructure:"color" yaml:"color"`   // auto, always or never
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default holds the built-in settings.
var Default = Config{
	Output: OutputConfig{
		Format: FormatTable,
		Color:  ColorAuto,
	},
	Logging: LoggingConfig{
		Level: "warn",
	},
}

// New returns a viper instance with defaults, environment binding and the
// config search path installed. A non-empty path is used as the only
// config file.
func New(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("nvctl")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "nvctl"))
		}
		v.AddConfigPath(".")
	}

	v.SetDefault("driver.library", Default.Driver.Library)
	v.SetDefault("driver.skip_initialize", Default.Driver.SkipInitialize)
	v.SetDefault("output.format", Default.Output.Format)
	v.SetDefault("output.color", Default.Output.Color)
	v.SetDefault("logging.level", Default.Logging.Level)
	v.SetDefault("logging.development", Default.Logging.Development)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file if one exists and decodes the result. An
// explicitly named file must exist.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatTable, FormatYAML:
	default:
		return fmt.Errorf("output.format: unknown format %q (want %s or %s)", c.Output.Format, FormatTable, FormatYAML)
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("output.color: unknown mode %q", c.Output.Color)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Logger builds the zap logger described by the logging section. Logs go
// to stderr so they never mix with command output.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
