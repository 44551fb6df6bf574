package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/elementarclash/clash-server-go/internal/config"
	"github.com/elementarclash/clash-server-go/internal/game"
	"github.com/elementarclash/clash-server-go/internal/game/catalog"
	"github.com/elementarclash/clash-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
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

	logger.Info("starting clash server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to load unit catalog", zap.Error(err))
	}
	logger.Info("unit catalog loaded",
		zap.Int("unit_types", len(cat.Types())),
		zap.String("path", cfg.Catalog.Path),
	)

	settings := cfg.Match.Settings()
	engine := game.NewEngine(logger.Named("engine"), settings, cat)
	logger.Info("match engine initialized",
		zap.Int("grid_size", settings.GridSize),
		zap.Int("max_actions", settings.MaxActions),
		zap.Int64("seed", settings.Seed),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws := server.NewWebSocketServer(cfg.Server.WebSocket, engine, logger.Named("websocket"))
	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
		if err := <-errCh; err != nil {
			logger.Error("WebSocket shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("WebSocket server error", zap.Error(err))
		}
	}

	logger.Info("clash server stopped", zap.Int("matches", len(engine.Matches())))
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.Path)
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
