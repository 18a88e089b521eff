package paramseq

import (
	"maps"
	"math"
)

// Args holds the bound parameter values passed to a base function.
type Args map[string]any

func (a Args) Clone() Args {
	return maps.Clone(a)
}

func (a Args) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, &MissingArgumentError{Param: name}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, &ArgumentTypeError{Param: name, Want: "a number", Got: v}
	}
}

// Int accepts integer values and floats without a fractional part, since
// YAML and JSON decoders may produce either.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, &MissingArgumentError{Param: name}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, &ArgumentTypeError{Param: name, Want: "an integer", Got: v}
}

func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", &MissingArgumentError{Param: name}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentTypeError{Param: name, Want: "a string", Got: v}
	}
	return s, nil
}

func (a Args) Bool(name string) (bool, error) {
	v, ok := a[name]
	if !ok {
		return false, &MissingArgumentError{Param: name}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ArgumentTypeError{Param: name, Want: "a bool", Got: v}
	}
	return b, nil
}
