// Package methods provides a small catalogue of data sources and matrix
// transforms (imputation, scaling, feature selection) that can be benchmarked
// against each other.
package methods

import (
	"errors"
	"math"
	"sort"
)

var ErrEmptyMatrix = errors.New("methods: matrix is empty")

// Matrix is a dense row-major matrix. NaN marks a missing value.
type Matrix [][]float64

func (m Matrix) Dims() (rows, cols int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (m Matrix) Column(j int) []float64 {
	col := make([]float64, len(m))
	for i := range m {
		col[i] = m[i][j]
	}
	return col
}

func (m Matrix) Missing() int {
	var n int
	for _, row := range m {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

func (m Matrix) validate() error {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return ErrEmptyMatrix
	}
	return nil
}

// present drops missing values.
func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	mu := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - mu) * (x - mu)
	}
	return math.Sqrt(ss / float64(len(xs)))
}
