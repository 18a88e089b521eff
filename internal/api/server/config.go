package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/pipebench/pkg/config/env"
	"github.com/DjordjeVuckovic/pipebench/pkg/stringsutil"
)

const DefaultEnvPath = "cmd/bench_api/.env"

type Config struct {
	Port        string
	UseHttp2    bool
	CorsOrigins []string
	BodyLimit   string
}

func LoadConfig() (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), DefaultEnvPath); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}
	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	port := env.Get("PORT", "8080")
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	origins := stringsutil.SplitList(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		Port:        port,
		UseHttp2:    os.Getenv("USE_HTTP2") == "true",
		CorsOrigins: origins,
		BodyLimit:   env.Get("BODY_LIMIT", "1M"),
	}, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return errors.New("port must be a number")
	}
	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
