// Package config loads mutect-vcf-selector settings from defaults, an
// optional YAML file, MUTECT_VCF_SELECTOR_* environment variables and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/mutect-vcf-selector/internal/datasource/clinvar"
)

// Keys double as flag names so cobra flags bind without a mapping table.
const (
	KeyVCF          = "vcf"
	KeyCosmic       = "cosmic"
	KeyClinvar      = "clinvar"
	KeyCGC          = "cgc"
	KeyHeader       = "header"
	KeySignificance = "clinical-significance-value"
	KeyOutput       = "output"
	KeyIndexCache   = "index-cache"
	KeySummary      = "summary"
	KeyLogLevel     = "log-level"
)

// FileName is the config file looked up in $HOME when no path is given.
const FileName = ".mutect-vcf-selector.yaml"

const (
	envPrefix       = "MUTECT_VCF_SELECTOR"
	defaultLogLevel = "info"
)

var (
	// ErrMissingVCF is returned when no caller VCF was configured.
	ErrMissingVCF = errors.New("caller VCF is required (--vcf)")
	// ErrInvalidLogLevel is returned for a log level zap does not know.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrEmptySignificance is returned when the significant-term list is
	// set but holds no terms.
	ErrEmptySignificance = errors.New("clinical significance list is empty")
)

// Config is the resolved run configuration.
type Config struct {
	VCF          string   `mapstructure:"vcf"`
	Cosmic       string   `mapstructure:"cosmic"`
	Clinvar      string   `mapstructure:"clinvar"`
	CGC          string   `mapstructure:"cgc"`
	Header       bool     `mapstructure:"header"`
	Significance []string `mapstructure:"clinical-significance-value"`
	Output       string   `mapstructure:"output"`
	IndexCache   string   `mapstructure:"index-cache"`
	Summary      bool     `mapstructure:"summary"`
	LogLevel     string   `mapstructure:"log-level"`
}

// New returns a viper instance with defaults and environment lookup
// configured. Flags are bound on top by the caller.
func New() *viper.Viper {
	v := viper.New()

	// Every key needs a default so environment-only values reach Unmarshal.
	for _, key := range []string{KeyVCF, KeyCosmic, KeyClinvar, KeyCGC, KeyOutput, KeyIndexCache} {
		v.SetDefault(key, "")
	}
	v.SetDefault(KeySignificance, clinvar.DefaultSignificance)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyHeader, false)
	v.SetDefault(KeySummary, false)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile reads the config file at path into v, or ~/.mutect-vcf-selector.yaml
// when path is empty. A missing file is not an error; the path is still
// recorded so that a later WriteConfig creates it.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, FileName)
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Significance = splitTerms(cfg.Significance)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the config file at path (see ReadFile) and decodes it.
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks the configuration for required and well-formed values.
func (c *Config) Validate() error {
	if c.VCF == "" {
		return ErrMissingVCF
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if len(c.Significance) == 0 {
		return ErrEmptySignificance
	}
	return nil
}

// Level returns the configured zap level. Call after Validate.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// splitTerms flattens comma-joined entries, as produced by environment
// variables and YAML scalars, and drops empty terms.
func splitTerms(values []string) []string {
	var terms []string
	for _, value := range values {
		for _, term := range strings.Split(value, ",") {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
	}
	return terms
}
