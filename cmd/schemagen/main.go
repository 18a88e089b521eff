package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/pkg/schema"
)

const schemaBaseID = "https://schemas.pipebench.dev"

func main() {
	var (
		outputDir = flag.String("output", "api", "Output directory for generated schemas")
		example   = flag.String("example", "configs/pipelines/impute_scale.yaml", "Pipeline spec copied next to the schema; validated before writing")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	generator := schema.NewGenerator("yaml", schemaBaseID)

	schemaJSON, err := generator.GenerateJSONSchema(spec.PipelineSpec{})
	if err != nil {
		log.Fatalf("Failed to generate schema for PipelineSpec: %v", err)
	}

	jsonFile := filepath.Join(*outputDir, "pipeline-spec-v1.json")
	if err := os.WriteFile(jsonFile, []byte(schemaJSON), 0644); err != nil {
		log.Fatalf("Failed to write JSON schema: %v", err)
	}
	fmt.Printf("Generated JSON schema: %s\n", jsonFile)

	if *example == "" {
		return
	}

	data, err := os.ReadFile(*example)
	if err != nil {
		log.Fatalf("Failed to read example spec: %v", err)
	}
	if _, err := spec.Parse(data); err != nil {
		log.Fatalf("Example spec is invalid: %v", err)
	}

	yamlFile := filepath.Join(*outputDir, "pipeline-spec-example.yaml")
	if err := os.WriteFile(yamlFile, data, 0644); err != nil {
		log.Fatalf("Failed to write YAML example: %v", err)
	}
	fmt.Printf("Generated YAML example: %s\n", yamlFile)
}
