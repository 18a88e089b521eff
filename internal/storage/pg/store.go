package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store keeps run metadata in bench_runs and one jsonb record per flattened
// row in bench_results.
type Store struct {
	pool *ConnectionPool
	db   *pgxpool.Pool
	*HealthChecker
}

func NewStore(pool *ConnectionPool) *Store {
	return &Store{pool: pool, db: pool.GetConn(), HealthChecker: NewHealthChecker(pool)}
}

func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r.Meta.RunID == uuid.Nil {
		return fmt.Errorf("report has no run id")
	}

	columnsJSON, err := json.Marshal(r.Columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}
	stagesJSON, err := json.Marshal(r.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal stages: %w", err)
	}
	envJSON, err := json.Marshal(r.Meta.Environment)
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}

	rows := make([][]any, len(r.Rows))
	for i := range r.Rows {
		recJSON, err := json.Marshal(r.Record(i))
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		rows[i] = []any{r.Meta.RunID, i, recJSON}
	}

	err = s.pool.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO bench_runs (id, name, started_at, duration_ns, workers, row_count, columns, stages, environment)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        `,
			r.Meta.RunID,
			r.Meta.Name,
			r.Meta.StartedAt,
			int64(r.Meta.Duration),
			r.Meta.Workers,
			len(r.Rows),
			columnsJSON,
			stagesJSON,
			envJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"bench_results"},
			[]string{"run_id", "row_idx", "record"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to bulk insert results: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("run saved to postgres", "run", r.Meta.RunID, "rows", len(rows))
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var (
		r           report.Report
		durationNs  int64
		columnsJSON []byte
		stagesJSON  []byte
		envJSON     []byte
	)
	err := s.db.QueryRow(ctx, `
        SELECT id, name, started_at, duration_ns, workers, row_count, columns, stages, environment
        FROM bench_runs WHERE id = $1
    `, id).Scan(
		&r.Meta.RunID,
		&r.Meta.Name,
		&r.Meta.StartedAt,
		&durationNs,
		&r.Meta.Workers,
		&r.Meta.RowCount,
		&columnsJSON,
		&stagesJSON,
		&envJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	r.Meta.Duration = time.Duration(durationNs)

	if err := json.Unmarshal(columnsJSON, &r.Columns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}
	var stages []runner.StageResult
	if err := json.Unmarshal(stagesJSON, &stages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stages: %w", err)
	}
	r.Stages = stages
	if err := json.Unmarshal(envJSON, &r.Meta.Environment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT record FROM bench_results WHERE run_id = $1 ORDER BY row_idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recJSON []byte
		if err := rows.Scan(&recJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var rec map[string]any
		if err := json.Unmarshal(recJSON, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		row := make([]any, len(r.Columns))
		for j, col := range r.Columns {
			row[j] = rec[col]
		}
		r.Rows = append(r.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	return &r, nil
}

func (s *Store) List(ctx context.Context) ([]report.Meta, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, started_at, duration_ns, workers, row_count, environment
        FROM bench_runs ORDER BY started_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []report.Meta
	for rows.Next() {
		var (
			m          report.Meta
			durationNs int64
			envJSON    []byte
		)
		if err := rows.Scan(&m.RunID, &m.Name, &m.StartedAt, &durationNs, &m.Workers, &m.RowCount, &envJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		m.Duration = time.Duration(durationNs)
		if err := json.Unmarshal(envJSON, &m.Environment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal environment: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return out, nil
}
