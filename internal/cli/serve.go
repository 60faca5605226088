package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fitai-backend/internal/catalog"
	"fitai-backend/internal/config"
	"fitai-backend/internal/database"
	"fitai-backend/internal/handlers"
	"fitai-backend/internal/logger"
	"fitai-backend/internal/middleware"
	"fitai-backend/internal/router"
	"fitai-backend/internal/services"
	"fitai-backend/internal/websocket"
)

const serveLongDesc string = `Run the FitAI API server.

Configuration is read from the environment, then .env and .env.local in
--dir. The chat relay starts without a credential and answers every chat
request with setup instructions until one is configured.`

const serveShortDesc string = "Run the FitAI API server"

type serveOptions struct {
	port      string
	debug     bool
	logFormat string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return runServe(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: pretty, json or text (overrides LOG_FORMAT)")

	return cmd
}

func runServe(ctx context.Context, dir string, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// ──── Step 1: Load Environment Variables ────
	cfg := config.LoadFrom(dir)
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}

	logOpts := []logger.Option{logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)}
	if opts.debug {
		logOpts = append(logOpts, logger.WithDebug(true))
	}
	log := logger.New(logOpts...)
	log.Info("🚀 Starting FitAI Backend...")
	log.Info("✓ Environment variables loaded", "env", cfg.Env)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("✗ Startup failed", "error", err)
		return err
	}

	// ──── Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: a.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		<-sigChan

		log.Info("Shutting down...")
		a.hub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("Shutdown incomplete", "error", err)
		}
	}()

	log.Info(fmt.Sprintf("✓ FitAI Backend ready on http://localhost:%s", cfg.Port))
	log.Info(fmt.Sprintf("  API: http://localhost:%s/api", cfg.Port))
	log.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/chat/ws", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		a.Close()
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	a.Close()
	log.Info("✓ Server stopped")
	return nil
}

// app holds the wired server and what must be released on shutdown.
type app struct {
	handler      http.Handler
	hub          *websocket.Hub
	relay        *services.Relay
	writeTimeout time.Duration
	closers      []func()
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	// ──── Step 2: Initialize Chat Relay ────
	relay, err := services.NewRelayFromConfig(ctx, cfg, services.RelayOptions{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("chat relay: %w", err)
	}
	a.relay = relay
	a.closers = append(a.closers, func() { relay.Close() })
	if relay.Configured() {
		log.Info("✓ Chat relay initialized", "service", relay.Profile().Service, "models", strings.Join(relay.Models(), ","))
	} else {
		log.Warn("✗ Chat relay not configured", "missing", relay.Profile().EnvVar)
	}

	// ──── Step 3: Load Workout Catalog ────
	cat, err := catalog.Load()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("workout catalog: %w", err)
	}
	log.Info("✓ Workout catalog loaded", "exercises", len(cat.Exercises(catalog.ExerciseFilter{})), "templates", len(cat.Templates(catalog.TemplateFilter{})))

	// ──── Step 4: Initialize Rate Limiter ────
	var store middleware.CounterStore
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		store = middleware.NewRedisStore(client, "fitai:ratelimit:")
		log.Info("✓ Redis connected, rate limits are shared")
	} else {
		mem := middleware.NewMemoryStore(time.Minute)
		a.closers = append(a.closers, mem.Close)
		store = mem
		log.Info("✓ In-memory rate limiter started")
	}
	limiter := middleware.NewRateLimiter(store, cfg.ChatRateLimit, time.Minute, log)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(relay, log)
	catalogHandler := handlers.NewCatalogHandler(cat)
	progressHandler := handlers.NewProgressHandler()

	// ──── Step 5: Start WebSocket Hub ────
	a.hub = websocket.NewHub(chatHandler, limiter, strings.Split(cfg.FrontendURL, ","), log)
	log.Info("✓ WebSocket hub started")

	a.handler = router.New(log, chatHandler, catalogHandler, progressHandler, a.hub, limiter, cfg.FrontendURL)

	// A chat request may walk every candidate before it answers.
	a.writeTimeout = time.Duration(len(relay.Models()))*cfg.AttemptTimeout + 15*time.Second

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
