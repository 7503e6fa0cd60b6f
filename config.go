package tabsniff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nao1215/tabsniff/domain/model"
)

// Configuration keys. Each can be overridden by an environment variable with
// the TABSNIFF_ prefix, e.g. TABSNIFF_SAMPLE_ROWS.
const (
	keySampleRows        = "sample_rows"
	keySampleBytes       = "sample_bytes"
	keyRemoveNullStrings = "remove_null_strings"
	keyLogLevel          = "log_level"
	keyLogFormat         = "log_format"

	envPrefix = "TABSNIFF"
)

// Log formats accepted by Config.LogFormat
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config tunes inference sampling and logging.
type Config struct {
	// SampleRows bounds the number of lines read for sniffing and inference
	SampleRows int `mapstructure:"sample_rows"`
	// SampleBytes bounds the number of decompressed bytes read for sniffing
	SampleBytes int `mapstructure:"sample_bytes"`
	// RemoveNullStrings treats the spellings NULL and null as empty fields
	RemoveNullStrings bool `mapstructure:"remove_null_strings"`
	// LogLevel is a logrus level name
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is "text" or "json"
	LogFormat string `mapstructure:"log_format"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		SampleRows:  model.DefaultSampleRows,
		SampleBytes: model.DefaultSampleBytes,
		LogLevel:    logrus.WarnLevel.String(),
		LogFormat:   LogFormatText,
	}
}

// LoadConfig reads a YAML, JSON or TOML configuration file over the defaults
// and applies TABSNIFF_* environment overrides. An empty path reads the
// environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault(keySampleRows, def.SampleRows)
	v.SetDefault(keySampleBytes, def.SampleBytes)
	v.SetDefault(keyRemoveNullStrings, def.RemoveNullStrings)
	v.SetDefault(keyLogLevel, def.LogLevel)
	v.SetDefault(keyLogFormat, def.LogFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		SampleRows:        v.GetInt(keySampleRows),
		SampleBytes:       v.GetInt(keySampleBytes),
		RemoveNullStrings: v.GetBool(keyRemoveNullStrings),
		LogLevel:          v.GetString(keyLogLevel),
		LogFormat:         v.GetString(keyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used
func (c Config) Validate() error {
	var errs []error
	if c.SampleRows <= 0 {
		errs = append(errs, fmt.Errorf("sample_rows must be positive, got %d", c.SampleRows))
	}
	if c.SampleBytes <= 0 {
		errs = append(errs, fmt.Errorf("sample_bytes must be positive, got %d", c.SampleBytes))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Option configures a Parser
type Option func(*Parser)

// WithConfig replaces the parser configuration
func WithConfig(cfg Config) Option {
	return func(p *Parser) {
		p.cfg = cfg
	}
}

// WithLogger sets the logger the parser writes to
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithSampleRows bounds the number of lines sampled for inference
func WithSampleRows(n int) Option {
	return func(p *Parser) {
		p.cfg.SampleRows = n
	}
}

// WithSampleBytes bounds the number of bytes sampled for inference
func WithSampleBytes(n int) Option {
	return func(p *Parser) {
		p.cfg.SampleBytes = n
	}
}

// WithRemoveNullStrings treats NULL and null as empty fields
func WithRemoveNullStrings(remove bool) Option {
	return func(p *Parser) {
		p.cfg.RemoveNullStrings = remove
	}
}
