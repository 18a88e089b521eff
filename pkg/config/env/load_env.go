package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the file named by ENV_PATH, or from
// defaultPath when ENV_PATH is unset. A missing file is only an error when
// env is "local" or empty; deployed environments set variables directly.
func LoadDotEnv(env string, defaultPath string) error {
	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	if err := godotenv.Load(envPath); err != nil {
		if env == "local" || env == "" {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
		slog.Debug("Skipping .env", "env", env, "path", envPath)
	}
	return nil
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Int parses key as a positive integer, returning fallback when it is unset.
func Int(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}
