package main

import (
	"flag"
	"fmt"
)

type cliConfig struct {
	SpecPath string
	Workers  int
	Output   string
	CSV      string
	Flatten  string
	Store    bool
	Watch    bool
	Group    string
	Field    string
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.SpecPath, "spec", "configs/pipelines/impute_scale.yaml", "Path to pipeline spec YAML")
	flag.IntVar(&cfg.Workers, "workers", 0, "Parallel candidate invocations per stage (0 uses the spec value)")
	flag.StringVar(&cfg.Output, "output", "", "Output path for the JSON report, - for stdout")
	flag.StringVar(&cfg.CSV, "csv", "", "Output path for the CSV report")
	flag.StringVar(&cfg.Flatten, "flatten", "summary", "Result flattener: summary or columns")
	flag.BoolVar(&cfg.Store, "store", false, "Save the report to the store selected by STORAGE_TYPE")
	flag.BoolVar(&cfg.Watch, "watch", false, "Re-run the pipeline whenever the spec file changes")
	flag.StringVar(&cfg.Group, "group", "", "Column to group results by for an aggregate summary")
	flag.StringVar(&cfg.Field, "field", "mean", "Numeric field aggregated with -group")

	flag.Parse()
	return cfg
}

func (c cliConfig) validate() error {
	if c.SpecPath == "" {
		return fmt.Errorf("-spec is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("-workers must not be negative, got %d", c.Workers)
	}
	return nil
}
