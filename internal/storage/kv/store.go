// Package kv stores run reports in an embedded BadgerDB, for persisting
// history without a database server.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	metaPrefix   = "meta/"
	reportPrefix = "report/"
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
}

type Store struct {
	db *badger.DB
}

// badgerLogger routes BadgerDB's own log lines through slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("kv store path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create kv directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: slog.Default().With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("failed to close kv store", "error", err)
	}
}

func (s *Store) Save(_ context.Context, r *report.Report) error {
	if r.Meta.RunID == uuid.Nil {
		return fmt.Errorf("report has no run id")
	}

	meta, err := json.Marshal(r.Meta)
	if err != nil {
		return fmt.Errorf("marshal run meta: %w", err)
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	id := r.Meta.RunID.String()
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(metaPrefix+id), meta); err != nil {
			return err
		}
		return txn.Set([]byte(reportPrefix+id), body)
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", id, err)
	}

	slog.Info("run saved to kv store", "run", id, "rows", len(r.Rows))
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*report.Report, error) {
	var r report.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(reportPrefix + id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) List(_ context.Context) ([]report.Meta, error) {
	metas := []report.Meta{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m report.Meta
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			metas = append(metas, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].StartedAt.After(metas[j].StartedAt)
	})
	return metas, nil
}

func (s *Store) Healthy(context.Context) bool {
	return !s.db.IsClosed()
}
