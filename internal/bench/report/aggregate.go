package report

import (
	"fmt"
	"math"
	"slices"
)

// GroupStat summarises a numeric field over all rows sharing one label.
// Mean, Min and Max are nil when the group has no numeric values.
type GroupStat struct {
	Label string   `json:"label"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

type groupAcc struct {
	count         int
	sum, min, max float64
}

// Aggregate groups rows by the value of column and summarises field. Groups
// appear in first-seen order; rows where field is not a finite number are
// skipped.
func Aggregate(r *Report, column, field string) ([]GroupStat, error) {
	ci := slices.Index(r.Columns, column)
	if ci < 0 {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	fi := slices.Index(r.Columns, field)
	if fi < 0 {
		return nil, fmt.Errorf("unknown field %q", field)
	}

	var order []string
	groups := make(map[string]*groupAcc)
	for _, row := range r.Rows {
		label := fmt.Sprint(row[ci])
		g, ok := groups[label]
		if !ok {
			g = &groupAcc{min: math.Inf(1), max: math.Inf(-1)}
			groups[label] = g
			order = append(order, label)
		}

		v, ok := toFloat(row[fi])
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		g.count++
		g.sum += v
		g.min = math.Min(g.min, v)
		g.max = math.Max(g.max, v)
	}

	out := make([]GroupStat, 0, len(order))
	for _, label := range order {
		g := groups[label]
		stat := GroupStat{Label: label, Count: g.count}
		if g.count > 0 {
			mean := g.sum / float64(g.count)
			stat.Mean, stat.Min, stat.Max = &mean, &g.min, &g.max
		}
		out = append(out, stat)
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
