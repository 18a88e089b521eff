package middleware

import (
	"context"
	"log/slog"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type LoggerOpt func(*middleware.RequestLoggerConfig)

// WithSkipPaths disables request logging for the given exact paths, such as
// probes and metric scrapes.
func WithSkipPaths(paths ...string) LoggerOpt {
	return func(c *middleware.RequestLoggerConfig) {
		c.Skipper = func(ctx echo.Context) bool {
			return slices.Contains(paths, ctx.Request().URL.Path)
		}
	}
}

// WithLogger writes request lines to l instead of the default logger.
func WithLogger(l *slog.Logger) LoggerOpt {
	return func(c *middleware.RequestLoggerConfig) {
		c.LogValuesFunc = logValues(l)
	}
}

func Logger(opts ...LoggerOpt) echo.MiddlewareFunc {
	o := middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogStatus:     true,
		LogLatency:    true,
		LogURI:        true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: logValues(slog.Default()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return middleware.RequestLoggerWithConfig(o)
}

func logValues(l *slog.Logger) func(echo.Context, middleware.RequestLoggerValues) error {
	return func(_ echo.Context, v middleware.RequestLoggerValues) error {
		attrs := []slog.Attr{
			slog.String("method", v.Method),
			slog.String("uri", v.URI),
			slog.Int("status", v.Status),
			slog.Duration("latency", v.Latency),
		}
		if v.Error == nil {
			l.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST", attrs...)
			return nil
		}
		attrs = append(attrs, slog.String("err", v.Error.Error()))
		l.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR", attrs...)
		return nil
	}
}
