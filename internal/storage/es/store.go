package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/google/uuid"
)

const (
	resultPageSize = 1000
	listSize       = 1000
)

// Store indexes one run document plus one document per flattened row into a
// single index, distinguished by the kind field.
type Store struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewStore(ctx context.Context, config ClientConfig) (*Store, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := &Store{client: client, indexName: config.IndexName}
	if err := s.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}
	return s, nil
}

func (s *Store) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Info("index already exists", "index", s.indexName)
		return nil
	}

	mappings := buildMapping()
	res, err := s.client.Indices.Create(s.indexName).Mappings(&mappings).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("index created", "index", s.indexName)
	return nil
}

func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r.Meta.RunID == uuid.Nil {
		return fmt.Errorf("report has no run id")
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.indexName,
		Client:        s.client,
		NumWorkers:    4,
		FlushBytes:    5e+6, // 5MB
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var successful, failed atomic.Int64
	add := func(id string, doc any) {
		body, err := json.Marshal(doc)
		if err != nil {
			slog.Error("failed to marshal document", "error", err, "id", id)
			failed.Add(1)
			return
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: id,
			Body:       bytes.NewReader(body),
			OnSuccess: func(context.Context, esutil.BulkIndexerItem, esutil.BulkIndexerResponseItem) {
				successful.Add(1)
			},
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			slog.Error("failed to add document to bulk indexer", "error", err, "id", id)
		}
	}

	add(r.Meta.RunID.String(), runDocument(r))
	for i := range r.Rows {
		add(resultDocID(r.Meta.RunID, i), ResultDocument{
			Kind:   kindResult,
			RunID:  r.Meta.RunID.String(),
			RowIdx: i,
			Record: r.Record(i),
		})
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	total := len(r.Rows) + 1
	slog.Info("run indexed",
		"run", r.Meta.RunID,
		"successful", successful.Load(),
		"failed", failed.Load(),
		"total", total,
		"index", s.indexName)

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("failed to index %d out of %d documents", n, total)
	}

	if _, err := s.client.Indices.Refresh().Index(s.indexName).Do(ctx); err != nil {
		return fmt.Errorf("failed to refresh index: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	res, err := s.client.Get(s.indexName, id.String()).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if !res.Found {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrRunNotFound)
	}

	doc, err := decode[RunDocument](res.Source_)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	meta, err := doc.meta()
	if err != nil {
		return nil, err
	}

	r := &report.Report{
		Meta:    meta,
		Stages:  doc.Stages,
		Columns: doc.Columns,
		Rows:    make([][]any, 0, doc.RowCount),
	}

	asc := sortorder.Asc
	var after []types.FieldValue
	for {
		req := s.client.Search().
			Index(s.indexName).
			Query(&types.Query{
				Bool: &types.BoolQuery{
					Filter: []types.Query{
						{Term: map[string]types.TermQuery{"kind": {Value: kindResult}}},
						{Term: map[string]types.TermQuery{"run_id": {Value: id.String()}}},
					},
				},
			}).
			Sort(&types.SortOptions{
				SortOptions: map[string]types.FieldSort{
					"row_idx": {Order: &asc},
				},
			}).
			Size(resultPageSize)
		if after != nil {
			req = req.SearchAfter(after...)
		}

		page, err := req.Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to search results: %w", err)
		}

		for _, hit := range page.Hits.Hits {
			rd, err := decode[ResultDocument](hit.Source_)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal result: %w", err)
			}
			row := make([]any, len(r.Columns))
			for j, col := range r.Columns {
				row[j] = rd.Record[col]
			}
			r.Rows = append(r.Rows, row)
		}

		if len(page.Hits.Hits) < resultPageSize {
			break
		}
		after = page.Hits.Hits[len(page.Hits.Hits)-1].Sort
	}

	return r, nil
}

func (s *Store) List(ctx context.Context) ([]report.Meta, error) {
	desc := sortorder.Desc
	res, err := s.client.Search().
		Index(s.indexName).
		Query(&types.Query{
			Term: map[string]types.TermQuery{"kind": {Value: kindRun}},
		}).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"started_at": {Order: &desc},
			},
		}).
		Size(listSize).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search runs: %w", err)
	}

	out := make([]report.Meta, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		doc, err := decode[RunDocument](hit.Source_)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		meta, err := doc.meta()
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *Store) Healthy(ctx context.Context) bool {
	ok, err := s.client.Ping().Do(ctx)
	return err == nil && ok
}
