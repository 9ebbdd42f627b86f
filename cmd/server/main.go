package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cuttlegame/cuttle-server-go/internal/config"
	"github.com/cuttlegame/cuttle-server-go/internal/repository"
	"github.com/cuttlegame/cuttle-server-go/internal/server"
	"github.com/cuttlegame/cuttle-server-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting cuttle server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize the session store per the configured backend
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize session store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("session store initialized", zap.String("backend", cfg.Storage.Backend))

	// Initialize session manager
	sessionMgr := session.NewManager(cfg.Game, cfg.Server.MaxSessions, store, logger)
	logger.Info("session manager initialized",
		zap.Int("max_sessions", cfg.Server.MaxSessions),
		zap.Bool("auto_opponent", cfg.Game.AutoOpponent),
	)

	// Initialize websocket hub
	hub := server.NewHub(sessionMgr, cfg.Server.WebSocket, logger)
	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.New(sessionMgr, hub, logger).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("cuttle server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Persist and close all active sessions
	sessionMgr.CloseAll()

	logger.Info("cuttle server stopped")
}

// newStore builds the session store selected by storage.backend.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return repository.NewMemoryStore(), nil
	case "postgres":
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(ctx, db, logger)
	case "redis":
		return repository.NewRedisStore(ctx, cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
