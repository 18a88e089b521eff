package factory

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/es"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/kv"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/pg"
	"github.com/DjordjeVuckovic/pipebench/pkg/config/env"
	"github.com/DjordjeVuckovic/pipebench/pkg/stringsutil"
)

const (
	DefaultESIndex = "pipebench-runs"
	DefaultKVPath  = ".pipebench/runs"
)

type StorageConfig struct {
	storage.Type
	Pg *pg.PoolConfig
	Es *es.ClientConfig
	Kv *kv.Config
}

var supportedTypes = []storage.Type{storage.ES, storage.PG, storage.KV, storage.InMem}

// LoadEnv reads the result store configuration. An unset STORAGE_TYPE
// selects the in-memory store.
func LoadEnv() (*StorageConfig, error) {
	storageType := storage.Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Info("STORAGE_TYPE is not set, using in-memory storage")
		storageType = storage.InMem
	}
	if !slices.Contains(supportedTypes, storageType) {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			supportedTypes)
	}

	cfg := &StorageConfig{Type: storageType}

	switch storageType {
	case storage.ES:
		esCfg := &es.ClientConfig{
			Addresses: stringsutil.SplitList(os.Getenv("ES_ADDRESSES"), ","),
			IndexName: env.Get("ES_INDEX_NAME", DefaultESIndex),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		}
		if len(esCfg.Addresses) == 0 {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", esCfg.Addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: ES_ADDRESSES is missing")
		}
		cfg.Es = esCfg

	case storage.PG:
		pgCfg := &pg.PoolConfig{ConnStr: os.Getenv("PG_CONNECTION_STRING")}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		maxConns, err := env.Int("PG_MAX_CONNS", 0)
		if err != nil {
			return nil, err
		}
		pgCfg.MaxConns = int32(maxConns)
		minConns, err := env.Int("PG_MIN_CONNS", 0)
		if err != nil {
			return nil, err
		}
		pgCfg.MinConns = int32(minConns)
		cfg.Pg = pgCfg

	case storage.KV:
		cfg.Kv = &kv.Config{
			Path:       env.Get("KV_PATH", DefaultKVPath),
			SyncWrites: os.Getenv("KV_SYNC_WRITES") == "true",
		}
	}

	return cfg, nil
}
