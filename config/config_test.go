package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp moves the working directory to a fresh temp dir so Load
// picks up (or misses) config.json deterministically.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OptimizerConfig.Window != 50 {
		t.Errorf("Expected default window 50, got %d", cfg.OptimizerConfig.Window)
	}
	if cfg.ExecutionConfig.MaxDailyTrades != 10 {
		t.Errorf("Expected default max daily trades 10, got %d", cfg.ExecutionConfig.MaxDailyTrades)
	}
	if !cfg.ExecutionConfig.RequireVolumeConfirmation {
		t.Error("Expected volume confirmation to default on")
	}
}

// TestLoadPreservesFileValues verifies that values set in config.json
// survive when no environment override is present.
func TestLoadPreservesFileValues(t *testing.T) {
	dir := chdirTemp(t)

	content := `{
		"execution": {"max_daily_trades": 5, "base_amount": 25},
		"optimizer": {"window": 80},
		"filters": {"fvg_max_age": 15}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ExecutionConfig.MaxDailyTrades != 5 {
		t.Errorf("Expected max daily trades 5 from file, got %d", cfg.ExecutionConfig.MaxDailyTrades)
	}
	if cfg.ExecutionConfig.BaseAmount != 25 {
		t.Errorf("Expected base amount 25 from file, got %f", cfg.ExecutionConfig.BaseAmount)
	}
	if cfg.OptimizerConfig.Window != 80 {
		t.Errorf("Expected window 80 from file, got %d", cfg.OptimizerConfig.Window)
	}
	if cfg.FiltersConfig.FVGMaxAge != 15 {
		t.Errorf("Expected FVG max age 15 from file, got %d", cfg.FiltersConfig.FVGMaxAge)
	}
	// Fields the file omits keep their defaults
	if cfg.ExecutionConfig.MinIntervalSecs != 60 {
		t.Errorf("Expected default min interval 60, got %d", cfg.ExecutionConfig.MinIntervalSecs)
	}
}

func TestEnvOverridesBeatFileValues(t *testing.T) {
	dir := chdirTemp(t)

	content := `{"execution": {"max_daily_trades": 5}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("EXECUTION_MAX_DAILY_TRADES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ExecutionConfig.MaxDailyTrades != 3 {
		t.Errorf("Expected env override 3, got %d", cfg.ExecutionConfig.MaxDailyTrades)
	}
}

// TestIndicatorBoundsMerge verifies configured grid ranges replace the
// built-in search space while untouched ranges keep their defaults.
func TestIndicatorBoundsMerge(t *testing.T) {
	opt := OptimizerConfig{
		Bounds: GridBoundsConfig{
			RSIPeriod: GridRange{Min: 10, Max: 12},
		},
	}

	b := opt.IndicatorBounds()
	if b.RSIPeriod.Min != 10 || b.RSIPeriod.Max != 12 {
		t.Errorf("Expected RSI period range [10, 12], got [%f, %f]", b.RSIPeriod.Min, b.RSIPeriod.Max)
	}
	if b.RSIPeriod.Default < 10 || b.RSIPeriod.Default > 12 {
		t.Errorf("Expected default clamped into range, got %f", b.RSIPeriod.Default)
	}
	if b.MACDFast.Min != 8 || b.MACDFast.Max != 16 {
		t.Errorf("Expected untouched MACD fast range [8, 16], got [%f, %f]", b.MACDFast.Min, b.MACDFast.Max)
	}
}

func TestGridBoundEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OPTIMIZER_RSI_PERIOD_MIN", "9")
	t.Setenv("OPTIMIZER_RSI_PERIOD_MAX", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b := cfg.OptimizerConfig.IndicatorBounds()
	if b.RSIPeriod.Min != 9 || b.RSIPeriod.Max != 15 {
		t.Errorf("Expected RSI period range [9, 15], got [%f, %f]", b.RSIPeriod.Min, b.RSIPeriod.Max)
	}
}
