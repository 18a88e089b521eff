package table

import (
	"fmt"
	"slices"
)

// Record is one flattened sub-row of a result artifact.
type Record map[string]any

// Flattener turns a structured result into records sharing a fixed column
// set. Every result of a table must flatten to the same set of columns.
type Flattener[A any] interface {
	Flatten(result A) (columns []string, records []Record, err error)
}

type FlattenFunc[A any] func(A) ([]string, []Record, error)

func (f FlattenFunc[A]) Flatten(result A) ([]string, []Record, error) {
	return f(result)
}

type FlatRow struct {
	Labels []string
	Values []any
}

// Flat is an exploded table: stage columns followed by the flattened result
// columns, one row per record.
type Flat struct {
	Stages []string
	Fields []string
	Rows   []FlatRow
}

func (f *Flat) Columns() []string {
	cols := make([]string, 0, len(f.Stages)+len(f.Fields))
	cols = append(cols, f.Stages...)
	return append(cols, f.Fields...)
}

// Value returns the cell of row i in the named stage or field column.
func (f *Flat) Value(i int, column string) (any, bool) {
	if idx := slices.Index(f.Stages, column); idx >= 0 {
		return f.Rows[i].Labels[idx], true
	}
	if idx := slices.Index(f.Fields, column); idx >= 0 {
		return f.Rows[i].Values[idx], true
	}
	return nil, false
}

// Explode flattens every result of t with fl. Rows keep table order, and
// records of one result keep the order returned by the flattener.
func Explode[A any](t *Table[A], fl Flattener[A]) (*Flat, error) {
	if t == nil {
		return nil, ErrNilTable
	}

	flat := &Flat{Stages: slices.Clone(t.stages)}
	for i, r := range t.rows {
		cols, records, err := fl.Flatten(r.Result)
		if err != nil {
			return nil, fmt.Errorf("flatten row %d: %w", i, err)
		}

		if i == 0 {
			flat.Fields = slices.Clone(cols)
		} else if !sameColumnSet(flat.Fields, cols) {
			return nil, &ColumnSetMismatchError{Row: i, Want: flat.Fields, Got: cols}
		}

		for _, rec := range records {
			values := make([]any, len(flat.Fields))
			for k, col := range flat.Fields {
				values[k] = rec[col]
			}
			flat.Rows = append(flat.Rows, FlatRow{
				Labels: slices.Clone(r.Labels),
				Values: values,
			})
		}
	}

	return flat, nil
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
