package spec

// PipelineSpec describes a benchmark pipeline: the datasets that seed the
// table and the stages applied to it, in order.
type PipelineSpec struct {
	Name        string      `yaml:"name" schema:"required"`
	Workers     int         `yaml:"workers" schema:"minimum=0"`
	Datasets    []Dataset   `yaml:"datasets" schema:"required,minItems=1"`
	Stages      []Stage     `yaml:"stages" schema:"required,minItems=1"`
	Annotations Annotations `yaml:"annotations,omitempty" description:"column -> label -> field -> value"`
}

type Dataset struct {
	Name   string         `yaml:"name" schema:"required"`
	Source string         `yaml:"source" schema:"required"`
	Params map[string]any `yaml:"params,omitempty"`
}

type Stage struct {
	Name       string      `yaml:"name" schema:"required"`
	Candidates []Candidate `yaml:"candidates" schema:"required,minItems=1"`
}

// Candidate references a registered method. With a sweep it expands to one
// candidate per parameter combination.
type Candidate struct {
	Label  string         `yaml:"label,omitempty"`
	Method string         `yaml:"method" schema:"required"`
	Params map[string]any `yaml:"params,omitempty"`
	Sweep  []Sweep        `yaml:"sweep,omitempty"`
	Mode   string         `yaml:"mode,omitempty" schema:"enum=cross|zip"`
}

type Sweep struct {
	Param  string `yaml:"param" schema:"required"`
	Values []any  `yaml:"values" schema:"required,minItems=1"`
}

// Annotations maps a stage column to per-label metadata, e.g.
// annotations[data][small] = {truth: 3}.
type Annotations map[string]map[string]map[string]any
