// Package main is the entry point for the product catalog server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/product-catalog/internal/config"
	"github.com/vyrodovalexey/product-catalog/internal/handler"
	"github.com/vyrodovalexey/product-catalog/internal/server"
	"github.com/vyrodovalexey/product-catalog/internal/store"
	"github.com/vyrodovalexey/product-catalog/internal/telemetry"
)

// startupTimeout bounds opening the database and the trace exporter.
const startupTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("db_driver", cfg.DBDriver),
		zap.Int("default_page_size", cfg.DefaultPageSize),
		zap.Int("max_page_size", cfg.MaxPageSize),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	tel, err := telemetry.New(startCtx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: handler.Version,
		Endpoint:       cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", zap.Error(err))
		return 1
	}

	catalog, err := store.Open(startCtx, cfg.Database(), logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		shutdownTelemetry(tel, cfg.ShutdownTimeout, logger)
		return 1
	}

	srv := server.New(cfg, logger, catalog, tel.TracerProvider, tel.Propagator)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		_ = catalog.Close()
		code = 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			code = 1
		}
	}

	shutdownTelemetry(tel, cfg.ShutdownTimeout, logger)
	logger.Info("server stopped")
	return code
}

func shutdownTelemetry(tel *telemetry.Telemetry, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := tel.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}

// initLogger initializes a JSON zap logger with the specified log level.
// Unknown levels fall back to info.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		InitialFields:    map[string]interface{}{"service": "product-catalog"},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
