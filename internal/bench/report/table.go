package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
)

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Pipeline Benchmark: %s ===\n", r.Meta.Name)
	fmt.Fprintf(tw, "run %s, %d rows, %d workers, %s\n\n",
		r.Meta.RunID, r.Meta.RowCount, r.Meta.Workers, fmtDuration(r.Meta.Duration))

	writeStageTable(tw, r)
	writeRowsTable(tw, r)

	tw.Flush()
}

func writeStageTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintf(tw, "Stage Latency (per candidate invocation)\n\n")

	header := []string{"Stage", "Candidate", "Min", "p50", "p90", "p95", "p99", "Max", "Mean", "Stddev", "Samples"}
	writeHeader(tw, header)

	for _, st := range r.Stages {
		for _, c := range st.PerCand {
			s := c.Latency
			row := []string{
				st.Name,
				c.Candidate,
				fmtDuration(s.Min),
				fmtDuration(s.Median),
				fmtDuration(s.P90),
				fmtDuration(s.P95),
				fmtDuration(s.P99),
				fmtDuration(s.Max),
				fmtDuration(s.Mean),
				fmtDuration(s.Stddev),
				fmt.Sprintf("%d", s.Samples),
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}

	fmt.Fprintln(tw)
}

func writeRowsTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintf(tw, "Results\n\n")
	writeHeader(tw, r.Columns)

	cells := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for j, v := range row {
			cells[j] = fmtCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	fmt.Fprintln(tw)
}

func writeHeader(tw *tabwriter.Writer, header []string) {
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))
}

func fmtCell(v any) string {
	switch n := v.(type) {
	case nil:
		return "N/A"
	case float64:
		return fmt.Sprintf("%.4f", n)
	default:
		return paramseq.FormatValue(v)
	}
}

func fmtDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
