package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	mw "github.com/DjordjeVuckovic/pipebench/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/pipebench/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

type Server struct {
	Echo *echo.Echo

	cfg    *Config
	health pkgserver.HealthChecker
	ctx    context.Context
	stop   context.CancelFunc
}

func New(cfg *Config, hc pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &Server{
		Echo:   e,
		cfg:    cfg,
		health: hc,
		ctx:    ctx,
		stop:   stop,
	}
}

// WithHealthChecker replaces the checker consulted by the health endpoint.
func (s *Server) WithHealthChecker(hc pkgserver.HealthChecker) *Server {
	s.health = hc
	return s
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.Logger(mw.WithSkipPaths("/health", "/metrics")))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	return s
}

func (s *Server) SetupErrorHandler() *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	return s
}

func (s *Server) SetupHealthChecks(path string) *Server {
	s.Echo.GET(path, func(c echo.Context) error {
		if s.health != nil && !s.health.Healthy(c.Request().Context()) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

func (s *Server) SetupMetrics(path string, g prometheus.Gatherer) *Server {
	s.Echo.GET(path, echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	return s
}

// Context is cancelled once a shutdown signal arrives.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Server) Start() error {
	defer s.stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	return s.Echo.Shutdown(ctx)
}
