package config

import (
	_ "embed"

	"github.com/macropower/declutter/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -o declutter.v1.json

// SchemaURL identifies the embedded schema.
const SchemaURL = "https://raw.githubusercontent.com/macropower/declutter/refs/heads/main/pkg/config/declutter.v1.json"

var (
	//go:embed declutter.v1.json
	schemaJSON []byte

	// DefaultValidator validates documents against the embedded schema.
	DefaultValidator = yaml.MustNewValidator(SchemaURL, schemaJSON)
)

// Schema returns the embedded JSON schema.
func Schema() []byte {
	return schemaJSON
}
