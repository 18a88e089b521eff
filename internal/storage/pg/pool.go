package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolConfig struct {
	ConnStr string
	// MaxConns and MinConns override the pgxpool defaults when positive.
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type ConnectionPool struct {
	conn *pgxpool.Pool
}

func NewConnectionPool(ctx context.Context, cfg PoolConfig) (*ConnectionPool, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		pgCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pgCfg.MinConns = min(cfg.MinConns, pgCfg.MaxConns)
	}
	if cfg.MaxConnIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return &ConnectionPool{conn: dbpool}, nil
}

func (p *ConnectionPool) GetConn() *pgxpool.Pool {
	return p.conn
}

func (p *ConnectionPool) Close() {
	p.conn.Close()
}

func (p *ConnectionPool) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

// InTx runs fn in a transaction, committing when fn returns nil and rolling
// back otherwise.
func (p *ConnectionPool) InTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
