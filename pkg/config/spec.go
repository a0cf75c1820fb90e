package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// DocumentSpec describes a configuration document: a mapping from directory
// paths to rule sets. It exists to generate the JSON schema; documents are
// decoded with [Parse] and built with [BuildRuleSet].
type DocumentSpec map[string]RuleSetSpec

func (DocumentSpec) JSONSchemaExtend(jss *jsonschema.Schema) {
	jss.Title = "declutter configuration"
	jss.Description = "Maps directory paths to the rules their entries must satisfy."
}

// RuleSetSpec describes the rules for one directory. An entry is allowed when
// any rule matches it.
type RuleSetSpec struct {
	// Whether allowed subdirectories are checked with the same rules.
	// Subdirectories are always allowed when true.
	Recursive *bool `json:"recursive,omitempty" jsonschema:"title=Recursive,default=true"`
	// Entry types to allow: "dir", "file", or an extension such as ".txt".
	AllowType EntryTypeList `json:"allow-type,omitempty" jsonschema:"title=Allow Type"`
	// Exact file names to allow.
	AllowName StringList `json:"allow-name,omitempty" jsonschema:"title=Allow Name"`
	// Allow entries of at least this size.
	MinSize *Size `json:"min-size,omitempty" jsonschema:"title=Min Size"`
	// Allow entries of at most this size.
	MaxSize *Size `json:"max-size,omitempty" jsonschema:"title=Max Size"`
	// CEL expression; entries for which it evaluates to true are allowed.
	AllowExpr string `json:"allow-expr,omitempty" jsonschema:"title=Allow Expression"`
}

// StringList is a string or a list of strings.
type StringList []string

func (StringList) JSONSchema() *jsonschema.Schema {
	return oneOrMany(&jsonschema.Schema{Type: "string"})
}

// EntryTypeList is an allow-type value or a list of them.
type EntryTypeList []string

func (EntryTypeList) JSONSchema() *jsonschema.Schema {
	return oneOrMany(&jsonschema.Schema{
		Type:    "string",
		Pattern: `^(dir|file|\..*)$`,
	})
}

// Size is a number of bytes, or a human-readable size such as "10MB".
type Size string

func (Size) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer", Minimum: json.Number("0")},
			{Type: "string", Pattern: `^\s*[0-9]+(\.[0-9]+)?\s*[A-Za-z]*\s*$`},
		},
	}
}

func oneOrMany(item *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			item,
			{Type: "array", Items: item},
		},
	}
}
