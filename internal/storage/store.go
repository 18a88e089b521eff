package storage

import (
	"context"
	"errors"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/google/uuid"
)

// ResultStore persists the reports of finished runs.
type ResultStore interface {
	Save(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, id uuid.UUID) (*report.Report, error)
	// List returns the metadata of every stored run, newest first.
	List(ctx context.Context) ([]report.Meta, error)
	Healthy(ctx context.Context) bool
}

type Type string

const (
	ES    Type = "es"
	PG    Type = "pg"
	InMem Type = "in_mem"
	KV    Type = "kv"
)

var ErrRunNotFound = errors.New("run not found")

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}
