package paramseq

import (
	"fmt"
	"strconv"
	"strings"
)

// Label renders a call description such as "scale(power = 2, center = true)".
// Parameters appear in the order given by params.
func Label(name string, args Args, params []string) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p+" = "+FormatValue(args[p]))
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case []any:
		strs := make([]string, len(val))
		for i, item := range val {
			strs[i] = FormatValue(item)
		}
		return "[" + strings.Join(strs, ", ") + "]"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
