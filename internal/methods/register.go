package methods

import (
	"fmt"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/registry"
)

func Catalogue() []paramseq.Func[Matrix] {
	return []paramseq.Func[Matrix]{
		{Name: "identity", Fn: func(m Matrix, _ paramseq.Args) (Matrix, error) { return m, nil }},
		{Name: "impute_constant", Params: []string{"value"}, Defaults: paramseq.Args{"value": 0.0}, Fn: withFloat("value", ImputeConstant)},
		{Name: "impute_mean", Fn: func(m Matrix, _ paramseq.Args) (Matrix, error) { return ImputeColumn(m, mean) }},
		{Name: "impute_median", Fn: func(m Matrix, _ paramseq.Args) (Matrix, error) { return ImputeColumn(m, median) }},
		{Name: "scale_zscore", Fn: noArgs(ScaleZScore)},
		{Name: "scale_minmax", Fn: noArgs(ScaleMinMax)},
		{Name: "scale_power", Params: []string{"power"}, Defaults: paramseq.Args{"power": 1.0}, Fn: withFloat("power", ScalePower)},
		{Name: "log1p", Fn: noArgs(Log1p)},
		{Name: "top_variance", Params: []string{"k"}, Fn: func(m Matrix, args paramseq.Args) (Matrix, error) {
			k, err := args.Int("k")
			if err != nil {
				return nil, err
			}
			return TopVariance(m, k)
		}},
	}
}

// Register adds the synthetic and csv sources and every catalogue method to r.
func Register(r *registry.Registry[Matrix]) error {
	err := r.RegisterSource(registry.Source[Matrix]{
		Name:     "synthetic",
		Params:   []string{"rows", "cols", "missing", "seed"},
		Defaults: paramseq.Args{"rows": 50, "cols": 5, "missing": 0.0, "seed": 1},
		Load:     loadSynthetic,
	})
	if err != nil {
		return fmt.Errorf("register source: %w", err)
	}
	err = r.RegisterSource(registry.Source[Matrix]{
		Name:     "csv",
		Params:   []string{"path", "delimiter"},
		Defaults: paramseq.Args{"delimiter": ","},
		Load:     loadCSV,
	})
	if err != nil {
		return fmt.Errorf("register source: %w", err)
	}

	for _, f := range Catalogue() {
		if err := r.RegisterMethod(f); err != nil {
			return fmt.Errorf("register method: %w", err)
		}
	}
	return nil
}

func NewRegistry() (*registry.Registry[Matrix], error) {
	r := registry.New[Matrix]()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
