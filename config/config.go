package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"signal-sniper/internal/indicators"
)

type Config struct {
	OptimizerConfig OptimizerConfig `json:"optimizer"`
	FiltersConfig   FiltersConfig   `json:"filters"`
	AnalystConfig   AnalystConfig   `json:"analyst"`
	ExecutionConfig ExecutionConfig `json:"execution"`
	ReasoningConfig ReasoningConfig `json:"reasoning"`
	LoggingConfig   LoggingConfig   `json:"logging"`
	ServerConfig    ServerConfig    `json:"server"`
	AuthConfig      AuthConfig      `json:"auth"`
	DatabaseConfig  DatabaseConfig  `json:"database"`
	RedisConfig     RedisConfig     `json:"redis"`
	VaultConfig     VaultConfig     `json:"vault"`
}

// OptimizerConfig holds indicator optimization configuration
type OptimizerConfig struct {
	Window        int              `json:"window"`           // Minimum candle history per run
	Horizon       int              `json:"horizon"`          // Look-ahead bars for scoring
	MinScore      float64          `json:"min_score"`        // Acceptance threshold for new parameters
	ReRunAfterHrs int              `json:"re_run_after_hrs"` // Hours before parameters are stale
	Bounds        GridBoundsConfig `json:"bounds"`
}

// GridRange bounds one tunable parameter in the search grid. A zero
// range falls back to the built-in search space.
type GridRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GridBoundsConfig narrows or widens the optimizer's search grid per
// indicator parameter.
type GridBoundsConfig struct {
	RSIPeriod       GridRange `json:"rsi_period"`
	RSIOverbought   GridRange `json:"rsi_overbought"`
	RSIOversold     GridRange `json:"rsi_oversold"`
	MACDFast        GridRange `json:"macd_fast"`
	MACDSlow        GridRange `json:"macd_slow"`
	MACDSignal      GridRange `json:"macd_signal"`
	BollingerPeriod GridRange `json:"bollinger_period"`
	BollingerStdDev GridRange `json:"bollinger_std_dev"`
	StochasticK     GridRange `json:"stochastic_k"`
	StochasticD     GridRange `json:"stochastic_d"`
}

// IndicatorBounds merges the configured ranges over the built-in
// search space. Unconfigured ranges keep their defaults.
func (o OptimizerConfig) IndicatorBounds() indicators.Bounds {
	b := indicators.DefaultBounds()
	applyRange(&b.RSIPeriod, o.Bounds.RSIPeriod)
	applyRange(&b.RSIOverbought, o.Bounds.RSIOverbought)
	applyRange(&b.RSIOversold, o.Bounds.RSIOversold)
	applyRange(&b.MACDFast, o.Bounds.MACDFast)
	applyRange(&b.MACDSlow, o.Bounds.MACDSlow)
	applyRange(&b.MACDSignal, o.Bounds.MACDSignal)
	applyRange(&b.BollingerPeriod, o.Bounds.BollingerPeriod)
	applyRange(&b.BollingerStdDev, o.Bounds.BollingerStdDev)
	applyRange(&b.StochasticK, o.Bounds.StochasticK)
	applyRange(&b.StochasticD, o.Bounds.StochasticD)
	return b
}

func applyRange(dst *indicators.Range, src GridRange) {
	if src.Min == 0 && src.Max == 0 {
		return
	}
	dst.Min = src.Min
	dst.Max = src.Max
	if dst.Default < dst.Min {
		dst.Default = dst.Min
	}
	if dst.Default > dst.Max {
		dst.Default = dst.Max
	}
}

// FiltersConfig holds confluence filter engine configuration
type FiltersConfig struct {
	ADXThreshold     float64 `json:"adx_threshold"`
	VolumeSpikeRatio float64 `json:"volume_spike_ratio"`
	FVGMinGapPercent float64 `json:"fvg_min_gap_percent"`
	FVGMaxAge        int     `json:"fvg_max_age"`
	OrderBlockMaxAge int     `json:"order_block_max_age"`
	SwingLookback    int     `json:"swing_lookback"`
	PatternMinBody   float64 `json:"pattern_min_body"`
}

// AnalystConfig holds validation stage configuration
type AnalystConfig struct {
	TimeoutSecs       int     `json:"timeout_secs"`
	StrongThreshold   float64 `json:"strong_threshold"`   // Confluence score for strong approval
	ModerateThreshold float64 `json:"moderate_threshold"` // Confluence score for moderate approval
	WeakThreshold     float64 `json:"weak_threshold"`     // Below this is HIGH_RISK
}

// ExecutionConfig holds decision gate and session configuration
type ExecutionConfig struct {
	MaxDailyTrades            int     `json:"max_daily_trades"`
	MaxConsecutiveLosses      int     `json:"max_consecutive_losses"`
	MinIntervalSecs           int     `json:"min_interval_secs"`
	MaxDataAgeSecs            int     `json:"max_data_age_secs"`
	JudgmentTimeoutMs         int     `json:"judgment_timeout_ms"`
	RequireVolumeConfirmation bool    `json:"require_volume_confirmation"`
	BaseAmount                float64 `json:"base_amount"`
}

// ReasoningConfig holds LLM provider configuration
type ReasoningConfig struct {
	Enabled        bool    `json:"enabled"`
	Provider       string  `json:"provider"` // "claude", "openai", or "deepseek"
	ClaudeAPIKey   string  `json:"claude_api_key"`
	OpenAIAPIKey   string  `json:"openai_api_key"`
	DeepSeekAPIKey string  `json:"deepseek_api_key"`
	Model          string  `json:"model"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	TimeoutSecs    int     `json:"timeout_secs"`
}

// APIKeyFor returns the configured key for the active provider
func (r ReasoningConfig) APIKeyFor(provider string) string {
	switch strings.ToLower(provider) {
	case "claude":
		return r.ClaudeAPIKey
	case "openai":
		return r.OpenAIAPIKey
	case "deepseek":
		return r.DeepSeekAPIKey
	}
	return ""
}

type LoggingConfig struct {
	Level       string `json:"level"`        // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output"`       // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format"`  // Output as JSON
	IncludeFile bool   `json:"include_file"` // Include file and line number
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins, comma separated
	ProductionMode  bool   `json:"production_mode"`
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

// OriginList splits the comma-separated allowed origins
func (s ServerConfig) OriginList() []string {
	if s.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(s.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled             bool          `json:"enabled"`
	JWTSecret           string        `json:"jwt_secret"`
	AccessTokenDuration time.Duration `json:"access_token_duration"`
	DefaultUsername     string        `json:"default_username"`
	DefaultPassword     string        `json:"-"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig holds Redis configuration for session persistence
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// VaultConfig holds HashiCorp Vault configuration
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`  // KV secrets engine mount path
	SecretPath string `json:"secret_path"` // Path prefix for provider keys
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

func Load() (*Config, error) {
	// Start from built-in defaults, layer the file over them, then
	// apply environment overrides on top
	cfg := defaultConfig()
	if err := loadFromFile("config.json", cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		OptimizerConfig: OptimizerConfig{
			Window:        50,
			Horizon:       5,
			MinScore:      0.3,
			ReRunAfterHrs: 24,
		},
		FiltersConfig: FiltersConfig{
			ADXThreshold:     25.0,
			VolumeSpikeRatio: 2.0,
			FVGMinGapPercent: 0.1,
			FVGMaxAge:        30,
			OrderBlockMaxAge: 50,
			SwingLookback:    5,
			PatternMinBody:   0.5,
		},
		AnalystConfig: AnalystConfig{
			TimeoutSecs:       10,
			StrongThreshold:   70,
			ModerateThreshold: 50,
			WeakThreshold:     30,
		},
		ExecutionConfig: ExecutionConfig{
			MaxDailyTrades:            10,
			MaxConsecutiveLosses:      3,
			MinIntervalSecs:           60,
			MaxDataAgeSecs:            600,
			JudgmentTimeoutMs:         2000,
			RequireVolumeConfirmation: true,
			BaseAmount:                10,
		},
		ReasoningConfig: ReasoningConfig{
			Enabled:     true,
			Provider:    "claude",
			Model:       "claude-3-haiku-20240307",
			MaxTokens:   1024,
			Temperature: 0.2,
			TimeoutSecs: 10,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		ServerConfig: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ShutdownTimeout: 10,
		},
		AuthConfig: AuthConfig{
			AccessTokenDuration: 12 * time.Hour,
			DefaultUsername:     "operator",
		},
		DatabaseConfig: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "signal_sniper",
			SSLMode:  "disable",
		},
		RedisConfig: RedisConfig{
			Address:  "localhost:6379",
			PoolSize: 10,
		},
		VaultConfig: VaultConfig{
			Address:    "http://localhost:8200",
			MountPath:  "secret",
			SecretPath: "signal-sniper/provider-keys",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// config. Unset variables keep whatever value the file (or the
// defaults) already established.
func applyEnvOverrides(cfg *Config) {
	// Optimizer config
	cfg.OptimizerConfig.Window = getEnvIntOrDefault("OPTIMIZER_WINDOW", cfg.OptimizerConfig.Window)
	cfg.OptimizerConfig.Horizon = getEnvIntOrDefault("OPTIMIZER_HORIZON", cfg.OptimizerConfig.Horizon)
	cfg.OptimizerConfig.MinScore = getEnvFloatOrDefault("OPTIMIZER_MIN_SCORE", cfg.OptimizerConfig.MinScore)
	cfg.OptimizerConfig.ReRunAfterHrs = getEnvIntOrDefault("OPTIMIZER_RERUN_AFTER_HOURS", cfg.OptimizerConfig.ReRunAfterHrs)
	applyRangeOverrides(&cfg.OptimizerConfig.Bounds)

	// Filters config
	cfg.FiltersConfig.ADXThreshold = getEnvFloatOrDefault("FILTERS_ADX_THRESHOLD", cfg.FiltersConfig.ADXThreshold)
	cfg.FiltersConfig.VolumeSpikeRatio = getEnvFloatOrDefault("FILTERS_VOLUME_SPIKE_RATIO", cfg.FiltersConfig.VolumeSpikeRatio)
	cfg.FiltersConfig.FVGMinGapPercent = getEnvFloatOrDefault("FILTERS_FVG_MIN_GAP_PERCENT", cfg.FiltersConfig.FVGMinGapPercent)
	cfg.FiltersConfig.FVGMaxAge = getEnvIntOrDefault("FILTERS_FVG_MAX_AGE", cfg.FiltersConfig.FVGMaxAge)
	cfg.FiltersConfig.OrderBlockMaxAge = getEnvIntOrDefault("FILTERS_ORDER_BLOCK_MAX_AGE", cfg.FiltersConfig.OrderBlockMaxAge)
	cfg.FiltersConfig.SwingLookback = getEnvIntOrDefault("FILTERS_SWING_LOOKBACK", cfg.FiltersConfig.SwingLookback)
	cfg.FiltersConfig.PatternMinBody = getEnvFloatOrDefault("FILTERS_PATTERN_MIN_BODY", cfg.FiltersConfig.PatternMinBody)

	// Analyst config
	cfg.AnalystConfig.TimeoutSecs = getEnvIntOrDefault("ANALYST_TIMEOUT_SECS", cfg.AnalystConfig.TimeoutSecs)
	cfg.AnalystConfig.StrongThreshold = getEnvFloatOrDefault("ANALYST_STRONG_THRESHOLD", cfg.AnalystConfig.StrongThreshold)
	cfg.AnalystConfig.ModerateThreshold = getEnvFloatOrDefault("ANALYST_MODERATE_THRESHOLD", cfg.AnalystConfig.ModerateThreshold)
	cfg.AnalystConfig.WeakThreshold = getEnvFloatOrDefault("ANALYST_WEAK_THRESHOLD", cfg.AnalystConfig.WeakThreshold)

	// Execution config
	cfg.ExecutionConfig.MaxDailyTrades = getEnvIntOrDefault("EXECUTION_MAX_DAILY_TRADES", cfg.ExecutionConfig.MaxDailyTrades)
	cfg.ExecutionConfig.MaxConsecutiveLosses = getEnvIntOrDefault("EXECUTION_MAX_CONSECUTIVE_LOSSES", cfg.ExecutionConfig.MaxConsecutiveLosses)
	cfg.ExecutionConfig.MinIntervalSecs = getEnvIntOrDefault("EXECUTION_MIN_INTERVAL_SECS", cfg.ExecutionConfig.MinIntervalSecs)
	cfg.ExecutionConfig.MaxDataAgeSecs = getEnvIntOrDefault("EXECUTION_MAX_DATA_AGE_SECS", cfg.ExecutionConfig.MaxDataAgeSecs)
	cfg.ExecutionConfig.JudgmentTimeoutMs = getEnvIntOrDefault("EXECUTION_JUDGMENT_TIMEOUT_MS", cfg.ExecutionConfig.JudgmentTimeoutMs)
	cfg.ExecutionConfig.RequireVolumeConfirmation = getEnvBoolOrDefault("EXECUTION_REQUIRE_VOLUME_CONFIRMATION", cfg.ExecutionConfig.RequireVolumeConfirmation)
	cfg.ExecutionConfig.BaseAmount = getEnvFloatOrDefault("EXECUTION_BASE_AMOUNT", cfg.ExecutionConfig.BaseAmount)

	// Reasoning config
	cfg.ReasoningConfig.Enabled = getEnvBoolOrDefault("REASONING_ENABLED", cfg.ReasoningConfig.Enabled)
	cfg.ReasoningConfig.Provider = getEnvOrDefault("REASONING_PROVIDER", cfg.ReasoningConfig.Provider)
	cfg.ReasoningConfig.ClaudeAPIKey = getEnvOrDefault("REASONING_CLAUDE_API_KEY", cfg.ReasoningConfig.ClaudeAPIKey)
	cfg.ReasoningConfig.OpenAIAPIKey = getEnvOrDefault("REASONING_OPENAI_API_KEY", cfg.ReasoningConfig.OpenAIAPIKey)
	cfg.ReasoningConfig.DeepSeekAPIKey = getEnvOrDefault("REASONING_DEEPSEEK_API_KEY", cfg.ReasoningConfig.DeepSeekAPIKey)
	cfg.ReasoningConfig.Model = getEnvOrDefault("REASONING_MODEL", cfg.ReasoningConfig.Model)
	cfg.ReasoningConfig.MaxTokens = getEnvIntOrDefault("REASONING_MAX_TOKENS", cfg.ReasoningConfig.MaxTokens)
	cfg.ReasoningConfig.Temperature = getEnvFloatOrDefault("REASONING_TEMPERATURE", cfg.ReasoningConfig.Temperature)
	cfg.ReasoningConfig.TimeoutSecs = getEnvIntOrDefault("REASONING_TIMEOUT_SECS", cfg.ReasoningConfig.TimeoutSecs)

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	cfg.LoggingConfig.JSONFormat = getEnvBoolOrDefault("LOG_JSON", cfg.LoggingConfig.JSONFormat)
	cfg.LoggingConfig.IncludeFile = getEnvBoolOrDefault("LOG_INCLUDE_FILE", cfg.LoggingConfig.IncludeFile)

	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", cfg.ServerConfig.AllowedOrigins)
	cfg.ServerConfig.ProductionMode = getEnvBoolOrDefault("SERVER_PRODUCTION_MODE", cfg.ServerConfig.ProductionMode)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", cfg.ServerConfig.ShutdownTimeout)

	// Auth config
	cfg.AuthConfig.Enabled = getEnvBoolOrDefault("AUTH_ENABLED", cfg.AuthConfig.Enabled)
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.AccessTokenDuration = getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_DURATION", cfg.AuthConfig.AccessTokenDuration)
	cfg.AuthConfig.DefaultUsername = getEnvOrDefault("AUTH_DEFAULT_USERNAME", cfg.AuthConfig.DefaultUsername)
	cfg.AuthConfig.DefaultPassword = getEnvOrDefault("AUTH_DEFAULT_PASSWORD", cfg.AuthConfig.DefaultPassword)

	// Database config
	cfg.DatabaseConfig.Enabled = getEnvBoolOrDefault("DATABASE_ENABLED", cfg.DatabaseConfig.Enabled)
	cfg.DatabaseConfig.Host = getEnvOrDefault("DATABASE_HOST", cfg.DatabaseConfig.Host)
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DATABASE_PORT", cfg.DatabaseConfig.Port)
	cfg.DatabaseConfig.User = getEnvOrDefault("DATABASE_USER", cfg.DatabaseConfig.User)
	cfg.DatabaseConfig.Password = getEnvOrDefault("DATABASE_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DATABASE_NAME", cfg.DatabaseConfig.Database)
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DATABASE_SSL_MODE", cfg.DatabaseConfig.SSLMode)

	// Redis config
	cfg.RedisConfig.Enabled = getEnvBoolOrDefault("REDIS_ENABLED", cfg.RedisConfig.Enabled)
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.RedisConfig.Address)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", cfg.RedisConfig.PoolSize)

	// Vault config
	cfg.VaultConfig.Enabled = getEnvBoolOrDefault("VAULT_ENABLED", cfg.VaultConfig.Enabled)
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", cfg.VaultConfig.Address)
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", cfg.VaultConfig.MountPath)
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", cfg.VaultConfig.SecretPath)
	cfg.VaultConfig.TLSEnabled = getEnvBoolOrDefault("VAULT_TLS_ENABLED", cfg.VaultConfig.TLSEnabled)
	cfg.VaultConfig.CACert = getEnvOrDefault("VAULT_CA_CERT", cfg.VaultConfig.CACert)
}

func applyRangeOverrides(b *GridBoundsConfig) {
	overrideRange(&b.RSIPeriod, "OPTIMIZER_RSI_PERIOD")
	overrideRange(&b.RSIOverbought, "OPTIMIZER_RSI_OVERBOUGHT")
	overrideRange(&b.RSIOversold, "OPTIMIZER_RSI_OVERSOLD")
	overrideRange(&b.MACDFast, "OPTIMIZER_MACD_FAST")
	overrideRange(&b.MACDSlow, "OPTIMIZER_MACD_SLOW")
	overrideRange(&b.MACDSignal, "OPTIMIZER_MACD_SIGNAL")
	overrideRange(&b.BollingerPeriod, "OPTIMIZER_BOLLINGER_PERIOD")
	overrideRange(&b.BollingerStdDev, "OPTIMIZER_BOLLINGER_STD_DEV")
	overrideRange(&b.StochasticK, "OPTIMIZER_STOCHASTIC_K")
	overrideRange(&b.StochasticD, "OPTIMIZER_STOCHASTIC_D")
}

func overrideRange(r *GridRange, prefix string) {
	r.Min = getEnvFloatOrDefault(prefix+"_MIN", r.Min)
	r.Max = getEnvFloatOrDefault(prefix+"_MAX", r.Max)
}

func loadFromFile(filename string, cfg *Config) error {
	file, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GenerateSampleConfig creates a sample configuration file
func GenerateSampleConfig(filename string) error {
	config := defaultConfig()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
