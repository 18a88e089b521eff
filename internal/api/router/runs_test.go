package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/methods"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/pipebench/internal/telemetry"
	"github.com/DjordjeVuckovic/pipebench/pkg/pagination"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `
name: impute-scale
workers: 2
datasets:
  - name: small
    source: synthetic
    params: {rows: 20, cols: 3, missing: 0.2, seed: 1}
stages:
  - name: impute
    candidates:
      - method: impute_mean
      - method: impute_constant
        params: {value: 0}
  - name: scale
    candidates:
      - method: scale_power
        sweep:
          - param: power
            values: [1, 2]
annotations:
  data:
    small: {size: 20}
`

type fixture struct {
	e       *echo.Echo
	metrics *telemetry.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	reg, err := methods.NewRegistry()
	require.NoError(t, err)

	m := telemetry.NewMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	rn := runner.New(reg, runner.DefaultConfig(), runner.WithObserver[methods.Matrix](m.Observer()))
	NewRunsRouter(e, reg, rn, in_mem.NewStore(), methods.Flatteners(), "summary",
		WithMetrics[methods.Matrix](m)).Bind()

	return fixture{e: e, metrics: m}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f fixture) createRun(t *testing.T) runSummary {
	t.Helper()
	rec := f.do(http.MethodPost, "/runs", pipelineYAML)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary runSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	return summary
}

func TestCreateRun(t *testing.T) {
	f := newFixture(t)
	summary := f.createRun(t)

	assert.Equal(t, "impute-scale", summary.Meta.Name)
	assert.Equal(t, 4, summary.Meta.RowCount)
	assert.Equal(t, 2, summary.Meta.Workers)
	assert.Equal(t, []string{"data", "impute", "scale", "rows", "cols", "missing", "mean", "sd", "size"}, summary.Columns)
	require.Len(t, summary.Stages, 2)
	assert.Equal(t, []string{"scale_power(power = 1)", "scale_power(power = 2)"}, summary.Stages[1].Candidates)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("impute-scale", "success")))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.TableRows.WithLabelValues("impute-scale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Invocations.WithLabelValues("impute", "impute_mean", "success")))
}

func TestCreateRun_JSONBodyAndFlattener(t *testing.T) {
	f := newFixture(t)

	body := `{"name": "json", "datasets": [{"name": "d", "source": "synthetic"}],
		"stages": [{"name": "s", "candidates": [{"method": "identity"}]}]}`
	rec := f.do(http.MethodPost, "/runs?flatten=columns", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary runSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, []string{"data", "s", "column", "mean", "sd", "missing"}, summary.Columns)
	assert.Equal(t, 5, summary.Meta.RowCount, "one row per synthetic column")
}

func TestCreateRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		want   string
	}{
		{
			name:   "malformed yaml",
			target: "/runs",
			body:   "name: [",
			status: http.StatusBadRequest,
			want:   "parse spec YAML",
		},
		{
			name:   "invalid spec",
			target: "/runs",
			body:   "name: x\n",
			status: http.StatusBadRequest,
			want:   "spec has no datasets",
		},
		{
			name:   "unknown method",
			target: "/runs",
			body:   strings.Replace(pipelineYAML, "impute_mean", "impute_mode", 1),
			status: http.StatusBadRequest,
			want:   `unknown method \"impute_mode\"`,
		},
		{
			name:   "unknown flattener",
			target: "/runs?flatten=nope",
			body:   pipelineYAML,
			status: http.StatusBadRequest,
			want:   "unknown flattener",
		},
		{
			name:   "missing annotation",
			target: "/runs",
			body:   strings.Replace(pipelineYAML, "small: {size: 20}", "other: {size: 20}", 1),
			status: http.StatusBadRequest,
			want:   "no annotation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFixture(t).do(http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestCreateRun_CandidateFailure(t *testing.T) {
	f := newFixture(t)

	body := strings.Replace(pipelineYAML, "method: scale_power", "method: top_variance\n        params: {k: 9}\n      - method: scale_power", 1)
	rec := f.do(http.MethodPost, "/runs", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"candidate":"top_variance(k = 9)"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Runs.WithLabelValues("impute-scale", "error")))
}

func TestGetAndListRuns(t *testing.T) {
	f := newFixture(t)
	first := f.createRun(t)
	f.createRun(t)

	rec := f.do(http.MethodGet, "/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page pagination.OffsetResult[report.Meta]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Total)

	rec = f.do(http.MethodGet, "/runs?page=2&size=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = pagination.OffsetResult[report.Meta]{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.Meta.RunID, page.Items[0].RunID)
	assert.False(t, page.HasMore)

	rec = f.do(http.MethodGet, "/runs?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodGet, "/runs?size=100000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/runs/"+first.Meta.RunID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, first.Meta.RunID, rep.Meta.RunID)
	assert.Len(t, rep.Rows, 4)

	rec = f.do(http.MethodGet, "/runs/"+first.Meta.RunID.String()+"?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "data,impute,scale,rows"))

	rec = f.do(http.MethodGet, "/runs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAggregate(t *testing.T) {
	f := newFixture(t)
	run := f.createRun(t)
	base := "/runs/" + run.Meta.RunID.String() + "/aggregate"

	rec := f.do(http.MethodGet, base+"?column=impute&field=missing", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats []report.GroupStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "impute_mean", stats[0].Label)
	assert.Equal(t, 2, stats[0].Count)
	require.NotNil(t, stats[0].Mean)
	assert.Zero(t, *stats[0].Mean)

	t.Run("field without numbers", func(t *testing.T) {
		rec := f.do(http.MethodGet, base+"?column=impute&field=scale", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var stats []report.GroupStat
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		require.Len(t, stats, 2)
		assert.Zero(t, stats[0].Count)
		assert.Nil(t, stats[0].Mean)
		assert.Contains(t, rec.Body.String(), `"mean":null`)
	})

	rec = f.do(http.MethodGet, base+"?column=impute", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, base+"?column=nope&field=missing", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogue(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/methods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ms []paramInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ms))
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	assert.Contains(t, names, "scale_power")
	assert.Contains(t, names, "top_variance")

	rec = f.do(http.MethodGet, "/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"synthetic"`)
	assert.Contains(t, rec.Body.String(), `"name":"csv"`)
}
