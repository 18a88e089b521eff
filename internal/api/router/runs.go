package router

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/registry"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/DjordjeVuckovic/pipebench/internal/telemetry"
	"github.com/DjordjeVuckovic/pipebench/pkg/pagination"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RunsRouter[A any] struct {
	e                *echo.Echo
	registry         *registry.Registry[A]
	runner           *runner.Runner[A]
	store            storage.ResultStore
	flatteners       map[string]table.Flattener[A]
	defaultFlattener string
	metrics          *telemetry.Metrics
}

type RunsRouterOption[A any] func(*RunsRouter[A])

func WithMetrics[A any](m *telemetry.Metrics) RunsRouterOption[A] {
	return func(r *RunsRouter[A]) {
		r.metrics = m
	}
}

// NewRunsRouter serves pipeline runs. defaultFlattener must be a key of
// flatteners; clients may pick another one with ?flatten=.
func NewRunsRouter[A any](
	e *echo.Echo,
	reg *registry.Registry[A],
	rn *runner.Runner[A],
	store storage.ResultStore,
	flatteners map[string]table.Flattener[A],
	defaultFlattener string,
	opts ...RunsRouterOption[A],
) *RunsRouter[A] {
	r := &RunsRouter[A]{
		e:                e,
		registry:         reg,
		runner:           rn,
		store:            store,
		flatteners:       flatteners,
		defaultFlattener: defaultFlattener,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RunsRouter[A]) Bind() {
	r.e.POST("/runs", r.createRunHandler)
	r.e.GET("/runs", r.listRunsHandler)
	r.e.GET("/runs/:id", r.getRunHandler)
	r.e.GET("/runs/:id/aggregate", r.aggregateHandler)
	r.e.GET("/methods", r.methodsHandler)
	r.e.GET("/sources", r.sourcesHandler)
}

type runSummary struct {
	Meta    report.Meta          `json:"meta"`
	Stages  []runner.StageResult `json:"stages"`
	Columns []string             `json:"columns"`
}

// createRunHandler accepts a pipeline spec as YAML or JSON, runs it and
// stores the report.
func (r *RunsRouter[A]) createRunHandler(c echo.Context) error {
	fl, err := r.flattener(c.QueryParam("flatten"))
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	ps, err := spec.Parse(body)
	if err != nil {
		return err
	}

	run, err := r.runner.Run(c.Request().Context(), ps)
	if r.metrics != nil {
		rows := 0
		if run != nil {
			rows = run.Table.Len()
		}
		r.metrics.RunFinished(ps.Name, rows, err)
	}
	if err != nil {
		return err
	}

	rep, err := report.Generate(run, fl)
	if err != nil {
		return apperr.NewValidationWrap("generate report", err)
	}
	if err := r.store.Save(c.Request().Context(), rep); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	return c.JSON(http.StatusCreated, runSummary{Meta: rep.Meta, Stages: rep.Stages, Columns: rep.Columns})
}

// listRunsHandler returns one page of run metadata, newest first.
func (r *RunsRouter[A]) listRunsHandler(c echo.Context) error {
	var req pagination.OffsetRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	if err := req.Validate(); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}

	metas, err := r.store.List(c.Request().Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	return c.JSON(http.StatusOK, pagination.Paginate(metas, req))
}

func (r *RunsRouter[A]) getRunHandler(c echo.Context) error {
	rep, err := r.loadRun(c)
	if err != nil {
		return err
	}

	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().WriteHeader(http.StatusOK)
		return report.WriteCSV(rep, c.Response())
	}
	return c.JSON(http.StatusOK, rep)
}

func (r *RunsRouter[A]) aggregateHandler(c echo.Context) error {
	column, field := c.QueryParam("column"), c.QueryParam("field")
	if column == "" || field == "" {
		return apperr.NewValidation("column and field query parameters are required")
	}

	rep, err := r.loadRun(c)
	if err != nil {
		return err
	}

	stats, err := report.Aggregate(rep, column, field)
	if err != nil {
		return apperr.NewValidationWrap("aggregate", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (r *RunsRouter[A]) loadRun(c echo.Context) (*report.Report, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperr.NewValidationWrap("invalid run id", err)
	}

	rep, err := r.store.Get(c.Request().Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return nil, apperr.NewNotFound("run", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return rep, nil
}

type paramInfo struct {
	Name     string   `json:"name"`
	Params   []string `json:"params"`
	Defaults any      `json:"defaults,omitempty"`
}

func (r *RunsRouter[A]) methodsHandler(c echo.Context) error {
	names := r.registry.MethodNames()
	out := make([]paramInfo, 0, len(names))
	for _, name := range names {
		f, _ := r.registry.Method(name)
		out = append(out, paramInfo{Name: name, Params: nonNil(f.Params), Defaults: f.Defaults})
	}
	return c.JSON(http.StatusOK, out)
}

func (r *RunsRouter[A]) sourcesHandler(c echo.Context) error {
	names := r.registry.SourceNames()
	out := make([]paramInfo, 0, len(names))
	for _, name := range names {
		s, _ := r.registry.Source(name)
		out = append(out, paramInfo{Name: name, Params: nonNil(s.Params), Defaults: s.Defaults})
	}
	return c.JSON(http.StatusOK, out)
}

func (r *RunsRouter[A]) flattener(name string) (table.Flattener[A], error) {
	if name == "" {
		name = r.defaultFlattener
	}
	fl, ok := r.flatteners[name]
	if !ok {
		known := make([]string, 0, len(r.flatteners))
		for k := range r.flatteners {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, apperr.NewValidation(fmt.Sprintf("unknown flattener %q, expected one of %v", name, known))
	}
	return fl, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
