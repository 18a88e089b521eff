package methods

import (
	"fmt"
	"math"
	"sort"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
)

// ImputeConstant replaces missing values with value.
func ImputeConstant(m Matrix, value float64) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	out := m.Clone()
	for _, row := range out {
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = value
			}
		}
	}
	return out, nil
}

// ImputeColumn replaces missing values with a per-column statistic computed
// over the values present in that column.
func ImputeColumn(m Matrix, stat func([]float64) float64) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	_, cols := m.Dims()
	out := m.Clone()
	for j := 0; j < cols; j++ {
		fill := stat(present(m.Column(j)))
		if math.IsNaN(fill) {
			return nil, fmt.Errorf("column %d has no values to impute from", j)
		}
		for i := range out {
			if math.IsNaN(out[i][j]) {
				out[i][j] = fill
			}
		}
	}
	return out, nil
}

// ScaleZScore centres each column and divides by its standard deviation.
// Constant columns become zero. Missing values stay missing.
func ScaleZScore(m Matrix) (Matrix, error) {
	return scaleColumns(m, func(col []float64) (float64, float64) {
		return mean(col), stddev(col)
	})
}

// ScaleMinMax maps each column onto [0, 1].
func ScaleMinMax(m Matrix) (Matrix, error) {
	return scaleColumns(m, func(col []float64) (float64, float64) {
		if len(col) == 0 {
			return math.NaN(), math.NaN()
		}
		lo, hi := col[0], col[0]
		for _, v := range col {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return lo, hi - lo
	})
}

func scaleColumns(m Matrix, params func([]float64) (offset, scale float64)) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	_, cols := m.Dims()
	out := m.Clone()
	for j := 0; j < cols; j++ {
		offset, scale := params(present(m.Column(j)))
		for i := range out {
			v := out[i][j]
			switch {
			case math.IsNaN(v):
			case scale == 0 || math.IsNaN(scale):
				out[i][j] = 0
			default:
				out[i][j] = (v - offset) / scale
			}
		}
	}
	return out, nil
}

// ScalePower raises every value to power, keeping the sign of the input.
func ScalePower(m Matrix, power float64) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	out := m.Clone()
	for _, row := range out {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			row[j] = math.Copysign(math.Pow(math.Abs(v), power), v)
		}
	}
	return out, nil
}

// Log1p applies log(1+x). Values at or below -1 are rejected.
func Log1p(m Matrix) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	out := m.Clone()
	for i, row := range out {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v <= -1 {
				return nil, fmt.Errorf("log1p undefined for %g at (%d, %d)", v, i, j)
			}
			row[j] = math.Log1p(v)
		}
	}
	return out, nil
}

// TopVariance keeps the k columns with the highest variance, in their
// original order.
func TopVariance(m Matrix, k int) (Matrix, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	_, cols := m.Dims()
	if k <= 0 || k > cols {
		return nil, fmt.Errorf("top_variance: k must be in [1, %d], got %d", cols, k)
	}

	type colVar struct {
		idx int
		v   float64
	}
	vars := make([]colVar, cols)
	for j := 0; j < cols; j++ {
		sd := stddev(present(m.Column(j)))
		if math.IsNaN(sd) {
			sd = 0
		}
		vars[j] = colVar{idx: j, v: sd * sd}
	}
	sort.SliceStable(vars, func(a, b int) bool { return vars[a].v > vars[b].v })

	keep := make([]int, k)
	for i := range keep {
		keep[i] = vars[i].idx
	}
	sort.Ints(keep)

	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]float64, k)
		for c, j := range keep {
			out[i][c] = row[j]
		}
	}
	return out, nil
}

func withFloat(name string, fn func(Matrix, float64) (Matrix, error)) func(Matrix, paramseq.Args) (Matrix, error) {
	return func(m Matrix, args paramseq.Args) (Matrix, error) {
		v, err := args.Float(name)
		if err != nil {
			return nil, err
		}
		return fn(m, v)
	}
}

func noArgs(fn func(Matrix) (Matrix, error)) func(Matrix, paramseq.Args) (Matrix, error) {
	return func(m Matrix, _ paramseq.Args) (Matrix, error) {
		return fn(m)
	}
}
