package yaml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Validator validates data against a JSON schema.
// Uses [github.com/santhosh-tekuri/jsonschema/v6].
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new [Validator] with the provided JSON schema data.
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss}, nil
}

func MustNewValidator(url string, schemaData []byte) *Validator {
	v, err := NewValidator(url, schemaData)
	if err != nil {
		panic(err)
	}

	return v
}

// Validate validates decoded data against the schema. Data must be decoded
// without [OrderedMap]. Failures are returned as an [*Error] locating the most
// specific failing value.
func (s *Validator) Validate(data any) error {
	err := s.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	cause, location := mostSpecificCause(validationErr)

	return &Error{
		Err:         errors.New(cause.ErrorKind.LocalizedString(printer)),
		Path:        buildPathFromLocation(location),
		Location:    location,
		SourceLines: DefaultSourceLines,
	}
}

// ValidateSource decodes YAML source and validates it, attaching the source
// to any returned [*Error].
func (s *Validator) ValidateSource(src []byte) error {
	var data any

	err := NewDecoder(bytes.NewReader(src)).Decode(&data)
	if err == nil {
		err = s.Validate(data)
	}

	return NewErrorWrapper(WithSource(src)).Wrap(err)
}

// mostSpecificCause recursively searches the causes of err for the one with
// the longest InstanceLocation.
func mostSpecificCause(err *jsonschema.ValidationError) (*jsonschema.ValidationError, []string) {
	best, longest := err, err.InstanceLocation

	for _, cause := range err.Causes {
		c, loc := mostSpecificCause(cause)
		if len(loc) > len(longest) {
			best, longest = c, loc
		}
	}

	return best, longest
}

// buildPathFromLocation converts an InstanceLocation slice to a [yaml.Path].
func buildPathFromLocation(location []string) *yaml.Path {
	current := NewPathBuilder().Root()

	for _, part := range location {
		index, err := strconv.ParseUint(part, 10, 0)
		if err == nil {
			current = current.Index(uint(index))
		} else {
			current = current.Child(part)
		}
	}

	return current.Build()
}
