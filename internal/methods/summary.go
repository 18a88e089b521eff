package methods

import (
	"fmt"
	"math"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
)

var summaryColumns = []string{"rows", "cols", "missing", "mean", "sd"}

// Summary flattens a matrix into a single record of overall statistics.
func Summary() table.FlattenFunc[Matrix] {
	return func(m Matrix) ([]string, []table.Record, error) {
		rows, cols := m.Dims()
		var all []float64
		for _, row := range m {
			all = append(all, present(row)...)
		}
		return summaryColumns, []table.Record{{
			"rows":    rows,
			"cols":    cols,
			"missing": m.Missing(),
			"mean":    finiteOrNil(mean(all)),
			"sd":      finiteOrNil(stddev(all)),
		}}, nil
	}
}

var columnSummaryColumns = []string{"column", "mean", "sd", "missing"}

// ColumnSummary flattens a matrix into one record per column.
func ColumnSummary() table.FlattenFunc[Matrix] {
	return func(m Matrix) ([]string, []table.Record, error) {
		_, cols := m.Dims()
		records := make([]table.Record, cols)
		for j := 0; j < cols; j++ {
			col := m.Column(j)
			vals := present(col)
			records[j] = table.Record{
				"column":  fmt.Sprintf("c%d", j),
				"mean":    finiteOrNil(mean(vals)),
				"sd":      finiteOrNil(stddev(vals)),
				"missing": len(col) - len(vals),
			}
		}
		return columnSummaryColumns, records, nil
	}
}

// Flatteners lists the flatteners selectable by name.
func Flatteners() map[string]table.Flattener[Matrix] {
	return map[string]table.Flattener[Matrix]{
		"summary": Summary(),
		"columns": ColumnSummary(),
	}
}

// finiteOrNil maps NaN and ±Inf to nil, which encoding/json cannot encode.
func finiteOrNil(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
