package config

import (
	"errors"
	"fmt"

	"github.com/macropower/declutter/pkg/rule"
)

var (
	// ErrUnknownKey indicates a rule set key that is not recognized.
	ErrUnknownKey = errors.New("unknown key")
	// ErrInvalidExtension indicates an allow-type value that is neither "dir",
	// "file", nor an extension starting with ".".
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrInvalidSizeLiteral indicates a size that is negative or cannot be
	// parsed.
	ErrInvalidSizeLiteral = errors.New("invalid size literal")
	// ErrWrongValueType indicates a node of the wrong kind, for example a
	// string where a boolean was expected.
	ErrWrongValueType = errors.New("wrong value type")
	// ErrInvalidExpression indicates an allow-expr that does not compile.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrEmptyRuleSet indicates a rule set mapping that produced no rules.
	ErrEmptyRuleSet = rule.ErrEmptyRuleSet
	// ErrEmptyDocument indicates a configuration file with no YAML content.
	ErrEmptyDocument = errors.New("no contents")
	// ErrNotAMapping indicates a document, or a rule set, that is not a
	// mapping.
	ErrNotAMapping = errors.New("expected key-value pairs")
	// ErrReadConfig indicates a configuration file that could not be read or
	// parsed as YAML.
	ErrReadConfig = errors.New("read config")
)

// KeyError is a rule set error attributed to a key of the rule set mapping
// and, for list values, to the offending item.
type KeyError struct {
	Err   error
	Key   string
	Index int // Index of the offending list item, or -1.
}

func newKeyError(key string, err error) *KeyError {
	return &KeyError{Key: key, Index: -1, Err: err}
}

func (e *KeyError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %v", e.Key, e.Index, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// Location returns the key, and the item index if any, as YAML location
// segments relative to the rule set mapping.
func (e *KeyError) Location() []string {
	if e.Index >= 0 {
		return []string{e.Key, fmt.Sprint(e.Index)}
	}

	return []string{e.Key}
}
