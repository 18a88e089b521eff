// Package main serves pipeline runs over HTTP.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/DjordjeVuckovic/pipebench/internal/api/router"
	"github.com/DjordjeVuckovic/pipebench/internal/api/server"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/methods"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/factory"
	"github.com/DjordjeVuckovic/pipebench/internal/telemetry"
	pkgserver "github.com/DjordjeVuckovic/pipebench/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	storeCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage config", "error", err)
		os.Exit(1)
	}

	reg, err := methods.NewRegistry()
	if err != nil {
		slog.Error("Failed to build method registry", "error", err)
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	rn := runner.New(reg, runner.DefaultConfig(), runner.WithObserver[methods.Matrix](metrics.Observer()))

	// server context is created before the store so pools close on shutdown
	s := server.New(sCfg, pkgserver.NewOkHealthChecker())

	store, cleanup, err := factory.NewResultStore(s.Context(), storeCfg)
	if err != nil {
		slog.Error("Failed to create result store", "type", storeCfg.Type, "error", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.Info("Result store initialized", "type", storeCfg.Type)

	s = s.WithHealthChecker(store).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupMetrics("/metrics", prometheus.DefaultGatherer)

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Pipeline bench API is running")
	})

	runs := router.NewRunsRouter(s.Echo, reg, rn, store, methods.Flatteners(), "summary",
		router.WithMetrics[methods.Matrix](metrics))
	runs.Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		cleanup()
		os.Exit(1)
	}
}
