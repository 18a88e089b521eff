package spec

import (
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"gopkg.in/yaml.v3"
)

const DefaultWorkers = 1

func LoadFromFile(path string) (*PipelineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML (or JSON) pipeline spec and validates it. Validation
// failures are returned as *apperr.ValidationError.
func Parse(data []byte) (*PipelineSpec, error) {
	var s PipelineSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, apperr.NewValidationWrap("parse spec YAML", err)
	}
	if err := validate(&s); err != nil {
		return nil, apperr.NewValidationWrap("invalid pipeline spec", err)
	}
	return &s, nil
}

func validate(s *PipelineSpec) error {
	if s.Name == "" {
		return fmt.Errorf("spec has no name")
	}
	if len(s.Datasets) == 0 {
		return fmt.Errorf("spec has no datasets")
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("spec has no stages")
	}

	datasets := make(map[string]bool, len(s.Datasets))
	for i, d := range s.Datasets {
		if d.Name == "" {
			return fmt.Errorf("dataset at index %d has no name", i)
		}
		if d.Source == "" {
			return fmt.Errorf("dataset %q has no source", d.Name)
		}
		if datasets[d.Name] {
			return fmt.Errorf("duplicate dataset %q", d.Name)
		}
		datasets[d.Name] = true
	}

	stages := map[string]bool{table.DataColumn: true, table.ResultColumn: true}
	for i, st := range s.Stages {
		if st.Name == "" {
			return fmt.Errorf("stage at index %d has no name", i)
		}
		if stages[st.Name] {
			return fmt.Errorf("stage name %q is reserved or already used", st.Name)
		}
		stages[st.Name] = true

		if len(st.Candidates) == 0 {
			return fmt.Errorf("stage %q has no candidates", st.Name)
		}
		for j, c := range st.Candidates {
			if err := validateCandidate(c); err != nil {
				return fmt.Errorf("stage %q candidate %d: %w", st.Name, j, err)
			}
		}
	}

	for col := range s.Annotations {
		if !stages[col] || col == table.ResultColumn {
			return fmt.Errorf("annotations reference unknown stage column %q", col)
		}
	}

	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	return nil
}

func validateCandidate(c Candidate) error {
	if c.Method == "" {
		return fmt.Errorf("no method")
	}
	if _, err := paramseq.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Mode != "" && len(c.Sweep) == 0 {
		return fmt.Errorf("method %q sets mode without a sweep", c.Method)
	}
	if c.Label != "" && len(c.Sweep) > 0 {
		return fmt.Errorf("method %q: a swept candidate cannot have a fixed label", c.Method)
	}
	for _, sw := range c.Sweep {
		if sw.Param == "" {
			return fmt.Errorf("method %q has a sweep without a param", c.Method)
		}
		if len(sw.Values) == 0 {
			return fmt.Errorf("method %q sweep %q has no values", c.Method, sw.Param)
		}
		if _, fixed := c.Params[sw.Param]; fixed {
			return fmt.Errorf("method %q param %q is both fixed and swept", c.Method, sw.Param)
		}
	}
	return nil
}
