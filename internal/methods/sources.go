package methods

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
	"github.com/DjordjeVuckovic/pipebench/internal/reader"
)

type SyntheticConfig struct {
	Rows    int
	Cols    int
	Missing float64
	Seed    uint64
}

// Synthetic generates a reproducible matrix whose column j is normally
// distributed around j. Roughly Missing of the cells are set to NaN.
func Synthetic(cfg SyntheticConfig) (Matrix, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return nil, fmt.Errorf("synthetic: rows and cols must be positive, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if cfg.Missing < 0 || cfg.Missing >= 1 {
		return nil, fmt.Errorf("synthetic: missing must be in [0, 1), got %g", cfg.Missing)
	}

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	m := make(Matrix, cfg.Rows)
	for i := range m {
		m[i] = make([]float64, cfg.Cols)
		for j := range m[i] {
			if cfg.Missing > 0 && r.Float64() < cfg.Missing {
				m[i][j] = math.NaN()
				continue
			}
			m[i][j] = r.NormFloat64() + float64(j)
		}
	}
	return m, nil
}

func loadSynthetic(args paramseq.Args) (Matrix, error) {
	rows, err := args.Int("rows")
	if err != nil {
		return nil, err
	}
	cols, err := args.Int("cols")
	if err != nil {
		return nil, err
	}
	missing, err := args.Float("missing")
	if err != nil {
		return nil, err
	}
	seed, err := args.Int("seed")
	if err != nil {
		return nil, err
	}
	return Synthetic(SyntheticConfig{Rows: rows, Cols: cols, Missing: missing, Seed: uint64(seed)})
}

// FromRecords converts CSV records into a matrix. Empty cells and NA/NaN
// become missing values; infinities are rejected.
func FromRecords(recs *reader.Records) (Matrix, error) {
	if len(recs.Rows) == 0 {
		return nil, ErrEmptyMatrix
	}
	m := make(Matrix, len(recs.Rows))
	for i, row := range recs.Rows {
		m[i] = make([]float64, len(row))
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			switch strings.ToLower(cell) {
			case "", "na", "nan":
				m[i][j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d column %q: %q is not a number", i+1, recs.Header[j], cell)
			}
			m[i][j] = v
		}
	}
	return m, nil
}

func loadCSV(args paramseq.Args) (Matrix, error) {
	path, err := args.String("path")
	if err != nil {
		return nil, err
	}
	delim, err := args.String("delimiter")
	if err != nil {
		return nil, err
	}
	d, size := utf8.DecodeRuneInString(delim)
	if size == 0 || size != len(delim) {
		return nil, fmt.Errorf("csv: delimiter must be a single character, got %q", delim)
	}

	recs, err := reader.ReadCSVFile(path, reader.WithDelimiter(d), reader.WithComment('#'))
	if err != nil {
		return nil, err
	}
	return FromRecords(recs)
}
