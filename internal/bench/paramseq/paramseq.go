// Package paramseq builds families of stage candidates by binding one or more
// parameters of a base function to sequences of values.
package paramseq

import (
	"fmt"
	"slices"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
)

// Func is a base function with an explicit parameter list. Fn receives the
// artifact plus the bound arguments of the candidate being invoked.
type Func[A any] struct {
	Name     string
	Params   []string
	Defaults Args
	Fn       func(A, Args) (A, error)
}

func (f Func[A]) HasParam(name string) bool {
	return slices.Contains(f.Params, name)
}

// With returns a copy of f with the given arguments bound as defaults.
func (f Func[A]) With(args Args) (Func[A], error) {
	for name := range args {
		if !f.HasParam(name) {
			return Func[A]{}, &InvalidParameterError{Func: f.Name, Param: name}
		}
	}
	merged := f.Defaults.Clone()
	if merged == nil {
		merged = make(Args, len(args))
	}
	for k, v := range args {
		merged[k] = v
	}
	f.Defaults = merged
	return f, nil
}

// Bind returns a single-argument candidate calling f with the defaults plus
// args. Each invocation receives its own copy of the arguments.
func (f Func[A]) Bind(args Args) (table.Method[A], error) {
	if f.Fn == nil {
		return nil, ErrNilFunc
	}
	bound, err := f.With(args)
	if err != nil {
		return nil, err
	}
	fn, defaults := bound.Fn, bound.Defaults
	return func(a A) (A, error) {
		return fn(a, defaults.Clone())
	}, nil
}

// Sweep lists the values one parameter takes.
type Sweep struct {
	Param  string
	Values []any
}

type Mode int

const (
	// ModeCross produces one candidate per combination of values; the last
	// sweep varies fastest.
	ModeCross Mode = iota
	// ModeZip walks all sweeps in lockstep.
	ModeZip
)

func (m Mode) String() string {
	switch m {
	case ModeCross:
		return "cross"
	case ModeZip:
		return "zip"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "cross":
		return ModeCross, nil
	case "zip":
		return ModeZip, nil
	default:
		return 0, fmt.Errorf("paramseq: unknown mode %q, expected cross or zip", s)
	}
}

// Seq varies a single parameter of base, producing one candidate per value
// labelled "name(param = value)".
func Seq[A any](base Func[A], param string, values []any) (table.Entries[table.Method[A]], error) {
	return Grid(base, []Sweep{{Param: param, Values: values}}, ModeCross)
}

// Grid varies several parameters of base at once.
func Grid[A any](base Func[A], sweeps []Sweep, mode Mode) (table.Entries[table.Method[A]], error) {
	if base.Fn == nil {
		return nil, ErrNilFunc
	}
	if len(sweeps) == 0 {
		return nil, ErrNoSweeps
	}

	params := make([]string, 0, len(sweeps))
	for _, s := range sweeps {
		if !base.HasParam(s.Param) {
			return nil, &InvalidParameterError{Func: base.Name, Param: s.Param}
		}
		if slices.Contains(params, s.Param) {
			return nil, &DuplicateParameterError{Param: s.Param}
		}
		if len(s.Values) == 0 {
			return nil, &EmptyValuesError{Param: s.Param}
		}
		params = append(params, s.Param)
	}

	var combos []Args
	switch mode {
	case ModeCross:
		combos = cross(sweeps)
	case ModeZip:
		var err error
		if combos, err = zip(sweeps); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("paramseq: unsupported mode %v", mode)
	}

	out := make(table.Entries[table.Method[A]], 0, len(combos))
	seen := make(map[string]bool, len(combos))
	for _, args := range combos {
		label := Label(base.Name, args, params)
		if seen[label] {
			return nil, &LabelCollisionError{Label: label}
		}
		seen[label] = true

		fn, err := base.Bind(args)
		if err != nil {
			return nil, err
		}
		out = append(out, table.Entry[table.Method[A]]{Name: label, Value: fn})
	}

	return out, nil
}

func cross(sweeps []Sweep) []Args {
	total := 1
	for _, s := range sweeps {
		total *= len(s.Values)
	}

	combos := make([]Args, 0, total)
	idx := make([]int, len(sweeps))
	for n := 0; n < total; n++ {
		args := make(Args, len(sweeps))
		for k, s := range sweeps {
			args[s.Param] = s.Values[idx[k]]
		}
		combos = append(combos, args)

		for k := len(sweeps) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(sweeps[k].Values) {
				break
			}
			idx[k] = 0
		}
	}
	return combos
}

func zip(sweeps []Sweep) ([]Args, error) {
	n := len(sweeps[0].Values)
	for _, s := range sweeps[1:] {
		if len(s.Values) != n {
			return nil, &LengthMismatchError{Param: s.Param, Want: n, Got: len(s.Values)}
		}
	}

	combos := make([]Args, n)
	for i := 0; i < n; i++ {
		args := make(Args, len(sweeps))
		for _, s := range sweeps {
			args[s.Param] = s.Values[i]
		}
		combos[i] = args
	}
	return combos, nil
}
