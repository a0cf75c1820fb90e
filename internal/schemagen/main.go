package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/declutter/pkg/config"
	"github.com/macropower/declutter/pkg/yaml"
)

var outFile = flag.String("o", "schema.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	// Run from pkg/config via go:generate.
	gen := yaml.NewSchemaGenerator(config.DocumentSpec{}, map[string]string{
		"github.com/macropower/declutter/pkg/config": "./",
	})

	jsData, err := gen.Generate()
	if err != nil {
		log.Fatalf("generate JSON schema: %v", err)
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
