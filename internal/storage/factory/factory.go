package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/es"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/kv"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/pg"
)

// NewResultStore creates the store selected by cfg. The returned func
// releases its connections.
func NewResultStore(ctx context.Context, cfg *StorageConfig) (storage.ResultStore, func(), error) {
	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		return pg.NewStore(pool), pool.Close, nil

	case storage.ES:
		if cfg.Es == nil {
			return nil, nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		s, err := es.NewStore(ctx, *cfg.Es)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case storage.KV:
		if cfg.Kv == nil {
			return nil, nil, fmt.Errorf("missing kv store configuration")
		}
		s, err := kv.Open(*cfg.Kv)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case storage.InMem:
		return in_mem.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}
