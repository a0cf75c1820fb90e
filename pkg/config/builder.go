package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/macropower/declutter/pkg/rule"
	"github.com/macropower/declutter/pkg/yaml"
)

// Rule set keys.
const (
	KeyRecursive = "recursive"
	KeyAllowType = "allow-type"
	KeyAllowName = "allow-name"
	KeyMinSize   = "min-size"
	KeyMaxSize   = "max-size"
	KeyAllowExpr = "allow-expr"
)

// Values accepted by allow-type besides extensions.
const (
	TypeDir  = "dir"
	TypeFile = "file"
)

// BuildRuleSet builds a [rule.RuleSet] from a rule set mapping node.
//
// The node must be a [yaml.MapSlice], whose keys are processed in document
// order, or a map[string]any, whose keys are processed in sorted order. Rules
// appear in the order of their keys; "recursive" (default true) produces no
// rule. Errors are attributed to their key with a [*KeyError].
func BuildRuleSet(node any) (*rule.RuleSet, error) {
	items, err := mappingItems(node)
	if err != nil {
		return nil, err
	}

	recursive := true
	rules := make([]rule.Rule, 0, len(items))

	for _, item := range items {
		key, ok := item.Key.(string)
		if !ok {
			return nil, newKeyError(fmt.Sprint(item.Key),
				fmt.Errorf("%w: expected string key, got %T", ErrWrongValueType, item.Key))
		}

		if key == KeyRecursive {
			b, ok := item.Value.(bool)
			if !ok {
				return nil, newKeyError(key,
					fmt.Errorf("%w: expected bool, got %T", ErrWrongValueType, item.Value))
			}

			recursive = b

			continue
		}

		r, err := buildRule(key, item.Value)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	rs, err := rule.NewRuleSet(recursive, rules...)
	if err != nil {
		return nil, fmt.Errorf("build rule set: %w", err)
	}

	return rs, nil
}

//nolint:ireturn // Rule is a closed interface.
func buildRule(key string, value any) (rule.Rule, error) {
	switch key {
	case KeyAllowType:
		values, err := stringList(key, value)
		if err != nil {
			return nil, err
		}

		types := make([]rule.EntryType, 0, len(values))
		for i, v := range values {
			t, err := ParseEntryType(v)
			if err != nil {
				return nil, &KeyError{Key: key, Index: i, Err: err}
			}

			types = append(types, t)
		}

		return &rule.AllowType{Types: types}, nil

	case KeyAllowName:
		names, err := stringList(key, value)
		if err != nil {
			return nil, err
		}

		return &rule.AllowName{Names: names}, nil

	case KeyMinSize:
		b, err := ParseSize(value)
		if err != nil {
			return nil, newKeyError(key, err)
		}

		return &rule.MinSize{Bytes: b}, nil

	case KeyMaxSize:
		b, err := ParseSize(value)
		if err != nil {
			return nil, newKeyError(key, err)
		}

		return &rule.MaxSize{Bytes: b}, nil

	case KeyAllowExpr:
		s, ok := value.(string)
		if !ok {
			return nil, newKeyError(key,
				fmt.Errorf("%w: expected string, got %T", ErrWrongValueType, value))
		}

		r, err := rule.NewAllowExpr(s)
		if err != nil {
			return nil, newKeyError(key, fmt.Errorf("%w: %w", ErrInvalidExpression, err))
		}

		return r, nil
	}

	return nil, newKeyError(key, ErrUnknownKey)
}

// ParseEntryType parses one allow-type value: "dir", "file", or an extension
// with its leading dot (".txt").
func ParseEntryType(s string) (rule.EntryType, error) {
	switch {
	case s == TypeDir:
		return rule.Directory, nil
	case s == TypeFile:
		return rule.RegularFile, nil
	case strings.HasPrefix(s, "."):
		return rule.ExtensionType(s), nil
	}

	return rule.EntryType{}, fmt.Errorf("%w: %q", ErrInvalidExtension, s)
}

// stringList accepts a string or a list of strings.
func stringList(key string, value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil

	case []string:
		return slices.Clone(v), nil

	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &KeyError{
					Key:   key,
					Index: i,
					Err:   fmt.Errorf("%w: expected string, got %T", ErrWrongValueType, item),
				}
			}

			out = append(out, s)
		}

		return out, nil
	}

	return nil, newKeyError(key,
		fmt.Errorf("%w: expected string or list of strings, got %T", ErrWrongValueType, value))
}

// mappingItems returns the key/value pairs of a mapping node in processing
// order.
func mappingItems(node any) ([]yaml.MapItem, error) {
	switch m := node.(type) {
	case yaml.MapSlice:
		return m, nil

	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		items := make([]yaml.MapItem, 0, len(keys))
		for _, k := range keys {
			items = append(items, yaml.MapItem{Key: k, Value: m[k]})
		}

		return items, nil
	}

	return nil, fmt.Errorf("%w: %w: got %T", ErrWrongValueType, ErrNotAMapping, node)
}

// RuleSetNode converts a [rule.RuleSet] back into a rule set mapping, in rule
// order. Building the result yields an equivalent rule set.
func RuleSetNode(rs *rule.RuleSet) yaml.MapSlice {
	node := make(yaml.MapSlice, 0, len(rs.Rules)+1)
	node = append(node, yaml.MapItem{Key: KeyRecursive, Value: rs.Recursive})

	for _, r := range rs.Rules {
		switch r := r.(type) {
		case *rule.AllowType:
			types := make([]string, 0, len(r.Types))
			for _, t := range r.Types {
				types = append(types, t.String())
			}

			node = append(node, yaml.MapItem{Key: KeyAllowType, Value: types})

		case *rule.AllowName:
			node = append(node, yaml.MapItem{Key: KeyAllowName, Value: slices.Clone(r.Names)})

		case *rule.MinSize:
			node = append(node, yaml.MapItem{Key: KeyMinSize, Value: r.Bytes})

		case *rule.MaxSize:
			node = append(node, yaml.MapItem{Key: KeyMaxSize, Value: r.Bytes})

		case *rule.AllowExpr:
			node = append(node, yaml.MapItem{Key: KeyAllowExpr, Value: r.Expression})
		}
	}

	return node
}
