// Package annotate joins per-label metadata onto exploded benchmark tables.
//
// The caller names the stage column whose labels act as join keys; labels
// are never inferred from the artifacts themselves.
package annotate

import (
	"fmt"
	"slices"
	"sort"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
)

// Lookup maps each label of Column to the fields joined onto rows carrying
// that label.
type Lookup struct {
	Column string
	Values map[string]map[string]any
}

type MissingAnnotationError struct {
	Column string
	Label  string
}

func (e *MissingAnnotationError) Error() string {
	return fmt.Sprintf("annotate: no annotation for %s = %q", e.Column, e.Label)
}

type FieldCollisionError struct {
	Field string
}

func (e *FieldCollisionError) Error() string {
	return fmt.Sprintf("annotate: field %q already exists", e.Field)
}

// FromSpec converts the annotations block of a pipeline spec into lookups,
// ordered by column name.
func FromSpec(a spec.Annotations) []Lookup {
	cols := make([]string, 0, len(a))
	for col := range a {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	out := make([]Lookup, 0, len(cols))
	for _, col := range cols {
		out = append(out, Lookup{Column: col, Values: a[col]})
	}
	return out
}

// Fields lists the field names the lookup contributes, sorted.
func (l Lookup) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	for _, meta := range l.Values {
		for k := range meta {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Annotate returns a copy of flat with the fields of every lookup appended.
// A row whose label has no entry in a lookup fails the whole call; fields a
// label does define only partially are left nil.
func Annotate(flat *table.Flat, lookups ...Lookup) (*table.Flat, error) {
	if flat == nil {
		return nil, table.ErrNilTable
	}

	out := &table.Flat{
		Stages: slices.Clone(flat.Stages),
		Fields: slices.Clone(flat.Fields),
		Rows:   make([]table.FlatRow, len(flat.Rows)),
	}
	for i, r := range flat.Rows {
		out.Rows[i] = table.FlatRow{Labels: slices.Clone(r.Labels), Values: slices.Clone(r.Values)}
	}

	for _, l := range lookups {
		idx := slices.Index(flat.Stages, l.Column)
		if idx < 0 {
			return nil, fmt.Errorf("annotate %q: %w", l.Column, table.ErrUnknownColumn)
		}

		fields := l.Fields()
		for _, f := range fields {
			if slices.Contains(out.Stages, f) || slices.Contains(out.Fields, f) {
				return nil, &FieldCollisionError{Field: f}
			}
		}

		for i := range out.Rows {
			label := out.Rows[i].Labels[idx]
			meta, ok := l.Values[label]
			if !ok {
				return nil, &MissingAnnotationError{Column: l.Column, Label: label}
			}
			for _, f := range fields {
				out.Rows[i].Values = append(out.Rows[i].Values, meta[f])
			}
		}
		out.Fields = append(out.Fields, fields...)
	}

	return out, nil
}
