package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"signal-sniper/internal/auth"
	"signal-sniper/internal/database"
	"signal-sniper/internal/events"
	"signal-sniper/internal/pipeline"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RateLimiter provides simple in-memory rate limiting per endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int           // max requests
	window   time.Duration // time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	// Filter out old requests
	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	repo        *database.Repository
	eventBus    *events.EventBus
	pipeline    *pipeline.Pipeline
	config      ServerConfig
	authService *auth.Service
	authEnabled bool
	rateLimiter *RateLimiter
	startTime   time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	ProductionMode bool
	AllowedOrigins []string
}

// NewServer creates a new API server
func NewServer(
	config ServerConfig,
	repo *database.Repository,
	eventBus *events.EventBus,
	pipe *pipeline.Pipeline,
	authService *auth.Service, // Can be nil if auth is disabled
) *Server {
	// Set Gin mode
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:8088"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:      router,
		repo:        repo,
		eventBus:    eventBus,
		pipeline:    pipe,
		config:      config,
		authService: authService,
		authEnabled: authService != nil,
		rateLimiter: NewRateLimiter(120, time.Minute),
		startTime:   time.Now(),
	}

	server.setupRoutes()

	// Initialize the WebSocket hub for real-time event broadcasting
	InitWebSocket(eventBus)

	return server
}

// rateLimitMiddleware creates a middleware that rate limits requests by endpoint
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if !s.rateLimiter.Allow(path) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests to this endpoint. Please slow down.",
				"path":    path,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Auth routes (public, no authentication required)
	if s.authEnabled {
		authGroup := s.router.Group("/api/auth")
		authGroup.POST("/login", s.handleLogin)
	}

	// Auth status endpoint (always available, returns whether auth is enabled)
	s.router.GET("/api/auth/status", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"auth_enabled": s.authEnabled,
		})
	})

	// API routes (protected when auth is enabled)
	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())

	if s.authEnabled {
		api.Use(auth.Middleware(s.authService.JWT()))
	}

	{
		// Signal evaluation endpoints
		api.POST("/signal/evaluate", s.handleEvaluateSignal)
		api.POST("/signal/outcome", s.handleReportOutcome)
		api.GET("/signals", s.handleGetSignals)
		api.GET("/signals/stats", s.handleGetSignalStats)
		api.GET("/signals/:id", s.handleGetSignal)

		// Session endpoints
		api.GET("/session", s.handleGetSession)
		api.POST("/session/reset", s.handleResetSession)
		api.POST("/session/emergency-stop", s.handleEmergencyStop)

		// Optimizer endpoints
		api.GET("/optimizer", s.handleGetOptimizerState)
		api.POST("/optimizer/run", s.handleRunOptimizer)
	}

	// WebSocket endpoint for real-time event streaming
	s.router.GET("/ws", s.handleWebSocket)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting HTTP server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbHealthy := true
	if s.repo != nil {
		if err := s.repo.HealthCheck(ctx); err != nil {
			dbHealthy = false
		}
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unhealthy",
		})
		return
	}

	stats := s.pipeline.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"database":          "healthy",
		"uptime":            time.Since(s.startTime).Round(time.Second).String(),
		"signals_evaluated": stats.Evaluated,
		"accuracy":          stats.Accuracy,
	})
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
