package table

import (
	"fmt"
	"slices"
	"sort"
)

const (
	DataColumn   = "data"
	ResultColumn = "result"
)

// Entry is one element of an ordered name -> value mapping.
type Entry[T any] struct {
	Name  string
	Value T
}

type Entries[T any] []Entry[T]

func (e Entries[T]) Names() []string {
	names := make([]string, len(e))
	for i, entry := range e {
		names[i] = entry.Name
	}
	return names
}

func (e Entries[T]) checkUnique() error {
	seen := make(map[string]bool, len(e))
	for _, entry := range e {
		if seen[entry.Name] {
			return &DuplicateNameError{Name: entry.Name}
		}
		seen[entry.Name] = true
	}
	return nil
}

// Row holds the stage choices that produced Result, one label per stage
// column in application order.
type Row[A any] struct {
	Labels []string
	Result A
}

// Table is an immutable benchmark table. Its columns are the stage columns in
// the order they were applied, followed by the result column.
type Table[A any] struct {
	stages []string
	rows   []Row[A]
}

// Init builds a table with a single "data" stage column and one row per entry.
func Init[A any](data Entries[A]) (*Table[A], error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if err := data.checkUnique(); err != nil {
		return nil, err
	}

	rows := make([]Row[A], len(data))
	for i, entry := range data {
		rows[i] = Row[A]{
			Labels: []string{entry.Name},
			Result: entry.Value,
		}
	}

	return &Table[A]{
		stages: []string{DataColumn},
		rows:   rows,
	}, nil
}

// InitMap is Init for a plain map; rows are ordered by name.
func InitMap[A any](data map[string]A) (*Table[A], error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(Entries[A], 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry[A]{Name: name, Value: data[name]})
	}
	return Init(entries)
}

func (t *Table[A]) Len() int {
	return len(t.rows)
}

func (t *Table[A]) Stages() []string {
	return slices.Clone(t.stages)
}

func (t *Table[A]) Columns() []string {
	cols := make([]string, 0, len(t.stages)+1)
	cols = append(cols, t.stages...)
	return append(cols, ResultColumn)
}

func (t *Table[A]) HasColumn(name string) bool {
	return name == ResultColumn || slices.Contains(t.stages, name)
}

func (t *Table[A]) Row(i int) Row[A] {
	r := t.rows[i]
	return Row[A]{Labels: slices.Clone(r.Labels), Result: r.Result}
}

func (t *Table[A]) Rows() []Row[A] {
	rows := make([]Row[A], len(t.rows))
	for i := range t.rows {
		rows[i] = t.Row(i)
	}
	return rows
}

func (t *Table[A]) Results() []A {
	results := make([]A, len(t.rows))
	for i, r := range t.rows {
		results[i] = r.Result
	}
	return results
}

// Column returns the labels of a stage column, one per row.
func (t *Table[A]) Column(name string) ([]string, error) {
	idx := slices.Index(t.stages, name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	labels := make([]string, len(t.rows))
	for i, r := range t.rows {
		labels[i] = r.Labels[idx]
	}
	return labels, nil
}

// Label returns the value of the stage column for this row.
func (t *Table[A]) Label(row int, stage string) (string, bool) {
	idx := slices.Index(t.stages, stage)
	if idx < 0 {
		return "", false
	}
	return t.rows[row].Labels[idx], true
}

// Filter returns a table holding the rows for which keep returns true. The
// input table is left untouched and provenance columns are preserved.
func Filter[A any](t *Table[A], keep func(Row[A]) bool) *Table[A] {
	out := &Table[A]{stages: slices.Clone(t.stages)}
	for i := range t.rows {
		r := t.Row(i)
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}
