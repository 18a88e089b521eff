package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PGContainer struct {
	Container  testcontainers.Container
	ConnString string
}

type PGConfig struct {
	Database string
	Username string
	Password string
}

func NewPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	return createPGContainer(ctx, cfg)
}

// NewPGContainerWithCleanup starts a migrated postgres for a single test and
// skips the test when integration tests are disabled.
func NewPGContainerWithCleanup(ctx context.Context, tb testing.TB) *PGContainer {
	tb.Helper()
	if !IntegrationEnabled() {
		tb.Skipf("set %s to run postgres integration tests", IntegrationEnv)
	}

	container, err := createPGContainer(ctx, PGConfig{
		Database: "pipebench_test_db",
		Username: "test",
		Password: "test",
	})
	if err != nil {
		tb.Fatalf("failed to create postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container.Container); err != nil {
			tb.Logf("failed to terminate postgres container: %v", err)
		}
	})

	return container
}

func createPGContainer(ctx context.Context, cfg PGConfig) (*PGContainer, error) {
	migrationFiles, err := upMigrations()
	if err != nil {
		return nil, err
	}

	var initScript strings.Builder
	for i, f := range migrationFiles {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", f, err)
		}
		initScript.Write(content)
		initScript.WriteString(";\n")
		if i < len(migrationFiles)-1 {
			initScript.WriteString("\n")
		}
	}

	tmpFile, err := os.CreateTemp("", "pipebench-migrations-*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(initScript.String()); err != nil {
		return nil, fmt.Errorf("failed to write migrations: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:17.5",
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		postgres.WithInitScripts(tmpFile.Name()),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PGContainer{
		Container:  pgContainer,
		ConnString: connStr,
	}, nil
}

// upMigrations lists db/migrations/*.up.sql relative to the module root, in
// apply order.
func upMigrations() ([]string, error) {
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(b), "../..")

	files, err := filepath.Glob(filepath.Join(projectRoot, "db", "migrations", "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to find migration files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations found under %s", projectRoot)
	}
	sort.Strings(files)
	return files, nil
}
