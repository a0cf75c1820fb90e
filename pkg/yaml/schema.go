package yaml

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator generates a JSON schema for a Go value.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	reflector   *jsonschema.Reflector
	v           any
	commentPkgs map[string]string
}

// NewSchemaGenerator creates a [SchemaGenerator] for v. Each entry of
// commentPkgs maps a Go import path to the directory holding its source, so
// that doc comments become schema descriptions.
func NewSchemaGenerator(v any, commentPkgs map[string]string) *SchemaGenerator {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return &SchemaGenerator{
		v:           v,
		commentPkgs: commentPkgs,
		reflector: &jsonschema.Reflector{
			DoNotReference: true,
			// Only structs can be expanded into the root schema.
			ExpandedStruct: t.Kind() == reflect.Struct,
		},
	}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	for pkg, dir := range g.commentPkgs {
		err := g.reflector.AddGoComments(pkg, dir)
		if err != nil {
			return nil, fmt.Errorf("add go comments for %s: %w", pkg, err)
		}
	}

	jss := g.reflector.Reflect(g.v)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
