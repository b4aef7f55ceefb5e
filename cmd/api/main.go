package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gagyebu/internal/config"
	"gagyebu/internal/domain"
	"gagyebu/internal/handler"
	"gagyebu/internal/ledger"
	"gagyebu/internal/middleware"
	"gagyebu/internal/repository/memory"
	"gagyebu/internal/repository/postgres"
	"gagyebu/internal/service"
	"gagyebu/internal/websocket"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ledger store holds the canonical record list for the session
	store := ledger.NewStore(cfg.Budget)

	// Background context for the watcher, cancelled on shutdown
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	// Select the persistence backend
	var repo domain.ExpenseRepository
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		if err := postgres.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure schema")
		}
		log.Info().Msg("Connected to database")

		pgRepo := postgres.NewExpenseRepository(pool, store)
		go func() {
			if err := pgRepo.Watch(watchCtx); err != nil {
				log.Error().Err(err).Msg("Expense watcher exited")
			}
		}()
		repo = pgRepo

	default:
		repo = memory.NewExpenseRepository(store)
		log.Info().Msg("Using in-memory backend")
	}

	// Initialize services and handlers
	ledgerService := service.NewLedgerService(repo, store)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)

	// WebSocket hub pushes every observed snapshot to connected clients
	hub := websocket.NewHub()
	wsHandler := handler.NewWebSocketHandler(hub, ledgerService, cfg.CORSOrigins)
	unsubscribe := store.Subscribe(func(snap ledger.Snapshot) {
		hub.Publish(websocket.LedgerSnapshot(handler.SnapshotResponse(snap)))
	})
	defer unsubscribe()

	// Rate limiter for mutating routes
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, ledgerHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", string(cfg.Backend)).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWatch()
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
