// Package config loads the arr configuration from arr.yaml, ARR_ environment
// variables and defaults, and turns it into engine options.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "arr.yaml"

// Config holds the full application configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Segments   []BandConfig     `yaml:"segments" mapstructure:"segments"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
}

// EngineConfig configures a run.
type EngineConfig struct {
	// Unit of transaction amounts, "monthly" or "annual". Empty uses the
	// unit declared by the ledger.
	Unit string `yaml:"unit" mapstructure:"unit"`
	// Currency used by imported ledgers that do not declare one.
	Currency          string `yaml:"currency" mapstructure:"currency"`
	From              string `yaml:"from" mapstructure:"from"`
	Through           string `yaml:"through" mapstructure:"through"`
	Parallelism       int    `yaml:"parallelism" mapstructure:"parallelism"`
	TrailingMonths    int    `yaml:"trailing_months" mapstructure:"trailing_months"`
	RecentMonths      int    `yaml:"recent_months" mapstructure:"recent_months"`
	EnterpriseSegment string `yaml:"enterprise_segment" mapstructure:"enterprise_segment"`
}

// ValidationConfig configures the reconciliation tolerance and the
// plausibility bounds.
type ValidationConfig struct {
	RelativeTolerance float64 `yaml:"relative_tolerance" mapstructure:"relative_tolerance"`
	AbsoluteTolerance float64 `yaml:"absolute_tolerance" mapstructure:"absolute_tolerance"`
	MinGrowthPct      float64 `yaml:"min_growth_pct" mapstructure:"min_growth_pct"`
	MaxGrowthPct      float64 `yaml:"max_growth_pct" mapstructure:"max_growth_pct"`
	GrowthWindow      int     `yaml:"growth_window" mapstructure:"growth_window"`
	MinARRPerCustomer float64 `yaml:"min_arr_per_customer" mapstructure:"min_arr_per_customer"`
	MaxARRPerCustomer float64 `yaml:"max_arr_per_customer" mapstructure:"max_arr_per_customer"`
}

// BandConfig is a segment bucket. A zero upper bound marks the last band.
type BandConfig struct {
	Upper float64 `yaml:"upper,omitempty" mapstructure:"upper"`
	Label string  `yaml:"label" mapstructure:"label"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.unit", "")
	v.SetDefault("engine.currency", arr.DefaultCurrency)
	v.SetDefault("engine.from", "")
	v.SetDefault("engine.through", "")
	v.SetDefault("engine.parallelism", 0)
	v.SetDefault("engine.trailing_months", 12)
	v.SetDefault("engine.recent_months", 6)
	v.SetDefault("engine.enterprise_segment", "Enterprise")
	v.SetDefault("validation.relative_tolerance", 0.001)
	v.SetDefault("validation.absolute_tolerance", 1.0)
	v.SetDefault("validation.min_growth_pct", -10.0)
	v.SetDefault("validation.max_growth_pct", 50.0)
	v.SetDefault("validation.growth_window", 0)
	v.SetDefault("validation.min_arr_per_customer", 300.0)
	v.SetDefault("validation.max_arr_per_customer", 5000.0)
	v.SetDefault("segments", []map[string]any{
		{"upper": 600, "label": "SMB"},
		{"upper": 2400, "label": "Mid-Market"},
		{"upper": 6000, "label": "Enterprise"},
		{"label": "Strategic"},
	})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// Default returns the configuration used when no file nor environment
// variable is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err) // defaults always decode
	}
	return &cfg
}

// Load reads the configuration file at 'path', or arr.yaml in the working
// directory when 'path' is empty. A missing file is not an error: defaults
// and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Environment
	v.SetEnvPrefix("ARR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Write saves the configuration as YAML at 'path'. It refuses to overwrite
// an existing file.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return eris.Wrapf(err, "config: create %q", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return eris.Wrapf(err, "config: write %q", path)
	}
	return f.Close()
}

// Bands converts the configured segments.
func (c *Config) Bands() (arr.Bands, error) {
	bands := make(arr.Bands, 0, len(c.Segments))
	for _, s := range c.Segments {
		bands = append(bands, arr.Band{Upper: decimal.NewFromFloat(s.Upper), Label: s.Label})
	}
	if err := bands.Validate(); err != nil {
		return nil, eris.Wrap(err, "config")
	}
	return bands, nil
}

// EngineOptions converts the configuration into engine options, logging
// with 'log'.
func (c *Config) EngineOptions(log *zap.Logger) (arr.Options, error) {
	opts := arr.DefaultOptions()
	opts.Logger = log

	if c.Engine.Unit != "" {
		unit, err := arr.ParseUnit(c.Engine.Unit)
		if err != nil {
			return opts, eris.Wrap(err, "config: engine.unit")
		}
		opts.Unit = unit
	}
	var err error
	if opts.From, err = parseBound(c.Engine.From); err != nil {
		return opts, eris.Wrap(err, "config: engine.from")
	}
	if opts.Through, err = parseBound(c.Engine.Through); err != nil {
		return opts, eris.Wrap(err, "config: engine.through")
	}
	if c.Engine.Parallelism > 0 {
		opts.Parallelism = c.Engine.Parallelism
	}
	opts.TrailingMonths = c.Engine.TrailingMonths
	opts.RecentMonths = c.Engine.RecentMonths
	opts.EnterpriseSegment = c.Engine.EnterpriseSegment

	if opts.Bands, err = c.Bands(); err != nil {
		return opts, err
	}
	if !opts.Bands.Has(opts.EnterpriseSegment) {
		return opts, eris.Errorf("config: engine.enterprise_segment %q is not a segments label", opts.EnterpriseSegment)
	}

	v := c.Validation
	opts.Validation = arr.ValidationOptions{
		RelativeTolerance: v.RelativeTolerance,
		AbsoluteTolerance: decimal.NewFromFloat(v.AbsoluteTolerance),
		MinGrowth:         arr.Percent(v.MinGrowthPct),
		MaxGrowth:         arr.Percent(v.MaxGrowthPct),
		GrowthWindow:      v.GrowthWindow,
		MinARRPerCustomer: decimal.NewFromFloat(v.MinARRPerCustomer),
		MaxARRPerCustomer: decimal.NewFromFloat(v.MaxARRPerCustomer),
	}
	if err := opts.Validation.Check(); err != nil {
		return opts, eris.Wrap(err, "config")
	}
	return opts, nil
}

// parseBound accepts a day "2024-01-15" or a month "2024-01".
func parseBound(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	if d, err := date.ParseMonth(s); err == nil {
		return d, nil
	}
	return date.Parse(s)
}

// InitLogger builds the global zap logger from the log configuration.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
