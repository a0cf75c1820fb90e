package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/macropower/declutter/pkg/rule"
	"github.com/macropower/declutter/pkg/yaml"
)

// DefaultFileName is the configuration file used when none is given.
const DefaultFileName = "declutter.yaml"

// Entry is one top-level entry of a [Document]: a directory path as written
// in the document, and its rule set mapping node.
type Entry struct {
	Node any
	Path string
}

// Document is a decoded configuration document.
type Document struct {
	// Path of the file the document was read from, if any.
	Path string
	// Source is the raw document, used to annotate errors.
	Source []byte
	// Entries in document order.
	Entries []Entry
}

// Load reads and parses the document at path. A leading "~" is expanded.
func Load(path string) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	data, err := readFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	doc.Path = expanded

	return doc, nil
}

// Parse decodes a configuration document. Only the first YAML document of
// the stream is used.
func Parse(src []byte) (*Document, error) {
	yamlErr := yaml.NewErrorWrapper(yaml.WithSource(src))

	var node any

	err := yaml.NewDecoder(bytes.NewReader(src), yaml.OrderedMap()).Decode(&node)
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDocument
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, yamlErr.Wrap(err))
	}

	if node == nil {
		return nil, ErrEmptyDocument
	}

	items, ok := node.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotAMapping, node)
	}

	doc := &Document{
		Source:  src,
		Entries: make([]Entry, 0, len(items)),
	}

	for _, item := range items {
		switch k := item.Key.(type) {
		case yaml.MapSlice, []any, nil:
			return nil, fmt.Errorf("%w: expected path key, got %T", ErrWrongValueType, k)
		default:
			doc.Entries = append(doc.Entries, Entry{
				Path: fmt.Sprint(k),
				Node: item.Value,
			})
		}
	}

	return doc, nil
}

// Build builds the rule set of the entry at index i. Errors attributed to a
// key are returned as a [*yaml.Error] pointing into the document source, and
// still match the sentinel errors of this package with [errors.Is].
func (d *Document) Build(i int) (*rule.RuleSet, error) {
	e := d.Entries[i]

	rs, err := BuildRuleSet(e.Node)
	if err != nil {
		return nil, d.annotate(e.Path, err)
	}

	return rs, nil
}

// Validate validates the document source against v, typically
// [DefaultValidator].
func (d *Document) Validate(v *yaml.Validator) error {
	err := v.ValidateSource(d.Source)
	if err != nil {
		return fmt.Errorf("validate %s: %w", d.name(), err)
	}

	return nil
}

func (d *Document) annotate(path string, err error) error {
	location := []string{path}

	var keyErr *KeyError
	if errors.As(err, &keyErr) {
		location = append(location, keyErr.Location()...)
	}

	return yaml.NewError(err,
		yaml.WithLocation(location...),
		yaml.WithSource(d.Source),
	)
}

func (d *Document) name() string {
	if d.Path == "" {
		return "config"
	}

	return d.Path
}

func readFile(path string) ([]byte, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if pathInfo.IsDir() {
		return nil, fmt.Errorf("%s: path is a directory", path)
	}

	if !pathInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: unknown file state", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}
