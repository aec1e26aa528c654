package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/arr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no arr.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Engine.Unit)
	assert.Equal(t, "USD", cfg.Engine.Currency)
	assert.Equal(t, 12, cfg.Engine.TrailingMonths)
	assert.Equal(t, 6, cfg.Engine.RecentMonths)
	assert.Equal(t, "Enterprise", cfg.Engine.EnterpriseSegment)
	assert.InDelta(t, 0.001, cfg.Validation.RelativeTolerance, 1e-9)
	assert.InDelta(t, 1.0, cfg.Validation.AbsoluteTolerance, 1e-9)
	assert.InDelta(t, -10.0, cfg.Validation.MinGrowthPct, 1e-9)
	assert.InDelta(t, 50.0, cfg.Validation.MaxGrowthPct, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	require.Len(t, cfg.Segments, 4)
	assert.Equal(t, BandConfig{Upper: 600, Label: "SMB"}, cfg.Segments[0])
	assert.Equal(t, BandConfig{Label: "Strategic"}, cfg.Segments[3])
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()

	yaml := `
engine:
  unit: monthly
  from: "2024-01"
validation:
  relative_tolerance: 0.01
segments:
  - upper: 1000
    label: Small
  - label: Large
log:
  level: debug
server:
  port: 9090
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monthly", cfg.Engine.Unit)
	assert.Equal(t, "2024-01", cfg.Engine.From)
	assert.InDelta(t, 0.01, cfg.Validation.RelativeTolerance, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	require.Len(t, cfg.Segments, 2)
	assert.Equal(t, "Large", cfg.Segments[1].Label)
	// Defaults still apply for unset values
	assert.Equal(t, 12, cfg.Engine.TrailingMonths)
	assert.InDelta(t, 5000.0, cfg.Validation.MaxARRPerCustomer, 1e-9)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("ARR_SERVER_PORT", "7070")
	t.Setenv("ARR_ENGINE_UNIT", "annual")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "annual", cfg.Engine.Unit)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.Unit = "monthly"
	cfg.Engine.From = "2024-01"
	cfg.Engine.Through = "2024-06-15"
	cfg.Engine.Parallelism = 3

	opts, err := cfg.EngineOptions(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, arr.MonthlyUnit, opts.Unit)
	assert.Equal(t, "2024-01-31", opts.From.String())
	assert.Equal(t, "2024-06-15", opts.Through.String())
	assert.Equal(t, 3, opts.Parallelism)
	assert.Equal(t, 12, opts.TrailingMonths)
	require.Len(t, opts.Bands, 4)
	assert.True(t, opts.Bands[0].Upper.Equal(decimal.NewFromInt(600)))
	assert.True(t, opts.Bands[3].Unbounded())
	assert.True(t, opts.Validation.AbsoluteTolerance.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, arr.Percent(50), opts.Validation.MaxGrowth)
}

func TestEngineOptions_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unit", func(c *Config) { c.Engine.Unit = "weekly" }},
		{"from", func(c *Config) { c.Engine.From = "last year" }},
		{"bands", func(c *Config) { c.Segments = []BandConfig{{Upper: 10, Label: "A"}} }},
		{"validation", func(c *Config) { c.Validation.MinGrowthPct = 100 }},
		{"enterprise segment", func(c *Config) { c.Engine.EnterpriseSegment = "Large" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			_, err := cfg.EngineOptions(nil)
			assert.Error(t, err)
		})
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arr.yaml")
	require.NoError(t, Default().Write(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// never overwrites
	assert.Error(t, Default().Write(path))
}

func TestInitLogger(t *testing.T) {
	logger, err := InitLogger(LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Same(t, logger, zap.L())

	_, err = InitLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
