package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"signal-sniper/config"
	"signal-sniper/internal/analyst"
	"signal-sniper/internal/api"
	"signal-sniper/internal/auth"
	"signal-sniper/internal/database"
	"signal-sniper/internal/events"
	"signal-sniper/internal/filters"
	"signal-sniper/internal/journal"
	"signal-sniper/internal/logging"
	"signal-sniper/internal/optimizer"
	"signal-sniper/internal/pipeline"
	"signal-sniper/internal/reasoning"
	"signal-sniper/internal/reflex"
	"signal-sniper/internal/vault"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(&logging.Config{
		Level:       cfg.LoggingConfig.Level,
		Output:      cfg.LoggingConfig.Output,
		JSONFormat:  cfg.LoggingConfig.JSONFormat,
		IncludeFile: cfg.LoggingConfig.IncludeFile,
		Component:   "main",
	})
	logging.SetDefault(logger)
	logger.Info("Structured logging initialized")

	ctx := context.Background()

	// Initialize event bus
	eventBus := events.NewEventBus()
	logger.Info("Event bus initialized")

	// Initialize database (optional; signal history is kept in memory
	// without it)
	var repo *database.Repository
	if cfg.DatabaseConfig.Enabled {
		db, err := database.NewDB(database.Config{
			Host:     cfg.DatabaseConfig.Host,
			Port:     cfg.DatabaseConfig.Port,
			User:     cfg.DatabaseConfig.User,
			Password: cfg.DatabaseConfig.Password,
			Database: cfg.DatabaseConfig.Database,
			SSLMode:  cfg.DatabaseConfig.SSLMode,
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		repo = database.NewRepository(db)
		logger.Info("Database initialized", "host", cfg.DatabaseConfig.Host)
	}

	// Initialize Redis session store (optional; sessions fall back to
	// in-memory caching when unavailable)
	var sessionStore pipeline.SessionStore
	if cfg.RedisConfig.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
			PoolSize: cfg.RedisConfig.PoolSize,
		})
		sessionStore = database.NewRedisSessionStore(redisClient)
		logger.Info("Redis session store initialized", "address", cfg.RedisConfig.Address)
	}

	// Initialize Vault client for reasoning-provider keys
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		log.Fatalf("Failed to initialize vault client: %v", err)
	}
	if vaultClient.IsEnabled() {
		logger.Info("Vault client initialized", "address", cfg.VaultConfig.Address)
	}

	// Initialize authentication service
	var authService *auth.Service
	if cfg.AuthConfig.Enabled && repo != nil {
		authService = auth.NewService(auth.Config{
			JWTSecret:           cfg.AuthConfig.JWTSecret,
			AccessTokenDuration: cfg.AuthConfig.AccessTokenDuration,
			DefaultUsername:     cfg.AuthConfig.DefaultUsername,
			DefaultPassword:     cfg.AuthConfig.DefaultPassword,
		}, repo)
		if err := authService.SeedDefaultOperator(ctx); err != nil {
			logger.WithError(err).Warn("Failed to seed default operator")
		}
		logger.Info("Authentication enabled")
	}

	// Initialize the reasoning provider
	provider := buildProvider(ctx, cfg, vaultClient, logger)

	// Initialize pipeline stages
	opt := optimizer.New(optimizer.Config{
		Window:     cfg.OptimizerConfig.Window,
		Horizon:    cfg.OptimizerConfig.Horizon,
		MinScore:   cfg.OptimizerConfig.MinScore,
		ReRunAfter: time.Duration(cfg.OptimizerConfig.ReRunAfterHrs) * time.Hour,
		Bounds:     cfg.OptimizerConfig.IndicatorBounds(),
	}, logger)

	filterEngine := filters.NewEngine(filters.Config{
		ADXThreshold:     cfg.FiltersConfig.ADXThreshold,
		VolumeSpikeRatio: cfg.FiltersConfig.VolumeSpikeRatio,
		FVGMinGapPercent: cfg.FiltersConfig.FVGMinGapPercent,
		FVGMaxAge:        cfg.FiltersConfig.FVGMaxAge,
		OrderBlockMaxAge: cfg.FiltersConfig.OrderBlockMaxAge,
		SwingLookback:    cfg.FiltersConfig.SwingLookback,
		PatternMinBody:   cfg.FiltersConfig.PatternMinBody,
	}, logger)

	validator := analyst.NewValidator(analyst.Config{
		Timeout:           time.Duration(cfg.AnalystConfig.TimeoutSecs) * time.Second,
		StrongThreshold:   cfg.AnalystConfig.StrongThreshold,
		ModerateThreshold: cfg.AnalystConfig.ModerateThreshold,
		WeakThreshold:     cfg.AnalystConfig.WeakThreshold,
	}, provider, logger)

	gate := reflex.NewGate(reflex.Config{
		MaxDailyTrades:            cfg.ExecutionConfig.MaxDailyTrades,
		MaxConsecutiveLosses:      cfg.ExecutionConfig.MaxConsecutiveLosses,
		MinInterval:               time.Duration(cfg.ExecutionConfig.MinIntervalSecs) * time.Second,
		MaxDataAge:                time.Duration(cfg.ExecutionConfig.MaxDataAgeSecs) * time.Second,
		JudgmentTimeout:           time.Duration(cfg.ExecutionConfig.JudgmentTimeoutMs) * time.Millisecond,
		RequireVolumeConfirmation: cfg.ExecutionConfig.RequireVolumeConfirmation,
		BaseAmount:                cfg.ExecutionConfig.BaseAmount,
	}, provider, logger)

	var signalRepo journal.SignalRepository
	if repo != nil {
		signalRepo = repo
	}
	jrnl := journal.New(signalRepo, zerolog.New(os.Stdout).With().Timestamp().Logger())

	var runRecorder pipeline.RunRecorder
	if repo != nil {
		runRecorder = repo
	}

	pipe := pipeline.New(opt, filterEngine, validator, gate, jrnl, eventBus, sessionStore, runRecorder, logger)

	// Restore a persisted trading session, if any
	if err := pipe.RestoreSession(ctx); err != nil {
		logger.WithError(err).Warn("Failed to restore trading session")
	}

	// Initialize web server
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		ProductionMode: cfg.ServerConfig.ProductionMode,
		AllowedOrigins: cfg.ServerConfig.OriginList(),
	}, repo, eventBus, pipe, authService)

	// Start web server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start web server: %v", err)
		}
	}()

	log.Println("Starting Signal Sniper...")
	log.Printf("API available at http://%s:%d", cfg.ServerConfig.Host, cfg.ServerConfig.Port)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down web server: %v", err)
	}

	log.Println("Shutdown complete")
}

// buildProvider assembles the reasoning provider from configuration.
// API keys come from the environment first and Vault second; with
// neither, the pipeline runs on deterministic fallbacks alone.
func buildProvider(ctx context.Context, cfg *config.Config, vaultClient *vault.Client, logger *logging.Logger) reasoning.Provider {
	if !cfg.ReasoningConfig.Enabled {
		logger.Info("Reasoning provider disabled, using deterministic fallbacks")
		return nil
	}

	apiKey := cfg.ReasoningConfig.APIKeyFor(cfg.ReasoningConfig.Provider)
	model := cfg.ReasoningConfig.Model

	if apiKey == "" {
		keyData, err := vaultClient.GetProviderKey(ctx, cfg.ReasoningConfig.Provider)
		if err == nil && keyData != nil {
			apiKey = keyData.APIKey
			if keyData.Model != "" {
				model = keyData.Model
			}
		}
	}

	if apiKey == "" {
		logger.Warn("No API key for reasoning provider, using deterministic fallbacks",
			"provider", cfg.ReasoningConfig.Provider)
		return nil
	}

	client := reasoning.NewClient(&reasoning.ClientConfig{
		Provider:    reasoning.ProviderKind(cfg.ReasoningConfig.Provider),
		APIKey:      apiKey,
		Model:       model,
		MaxTokens:   cfg.ReasoningConfig.MaxTokens,
		Temperature: cfg.ReasoningConfig.Temperature,
		Timeout:     time.Duration(cfg.ReasoningConfig.TimeoutSecs) * time.Second,
	})
	logger.Info("Reasoning provider initialized",
		"provider", cfg.ReasoningConfig.Provider, "model", model)
	return client
}
