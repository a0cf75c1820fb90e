package rule

import (
	"fmt"
	"strings"
)

// RuleSet is the ordered collection of rules governing one watched directory.
// An entry is allowed when any rule matches. A RuleSet is immutable after
// [NewRuleSet] returns and may be shared between goroutines.
type RuleSet struct {
	// Rules in evaluation order.
	Rules []Rule
	// Recursive controls whether allowed subdirectories are scanned with the
	// same rules.
	Recursive bool
}

// NewRuleSet creates a [RuleSet] from rules, in order.
//
// At least one rule is required, otherwise [ErrEmptyRuleSet] is returned.
// When recursive is true, the set is normalized so that subdirectories are
// always allowed (and therefore entered): [Directory] is added to every
// [AllowType] rule lacking it, and if there are no [AllowType] rules, an
// AllowType{Directory} rule is appended.
func NewRuleSet(recursive bool, rules ...Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleSet
	}

	rs := &RuleSet{
		Recursive: recursive,
		Rules:     make([]Rule, 0, len(rules)+1),
	}

	hasAllowType := false

	for _, r := range rules {
		if at, ok := r.(*AllowType); ok {
			hasAllowType = true

			if recursive && !at.Has(Directory) {
				// Copy, so the caller's rule is left untouched.
				types := make([]EntryType, 0, len(at.Types)+1)
				types = append(types, at.Types...)
				r = &AllowType{Types: append(types, Directory)}
			}
		}

		rs.Rules = append(rs.Rules, r)
	}

	if recursive && !hasAllowType {
		rs.Rules = append(rs.Rules, &AllowType{Types: []EntryType{Directory}})
	}

	return rs, nil
}

// MustNewRuleSet creates a new [RuleSet] and panics if there's an error.
func MustNewRuleSet(recursive bool, rules ...Rule) *RuleSet {
	rs, err := NewRuleSet(recursive, rules...)
	if err != nil {
		panic(err)
	}

	return rs
}

// Match evaluates the rules in order and returns the index of the first rule
// matching the entry, or -1 if none does.
func (rs *RuleSet) Match(e *Entry) (int, error) {
	for i, r := range rs.Rules {
		ok, err := r.Match(e)
		if err != nil {
			return -1, fmt.Errorf("rule %q: %w", r, err)
		}
		if ok {
			return i, nil
		}
	}

	return -1, nil
}

// Allows reports whether any rule matches the entry.
func (rs *RuleSet) Allows(e *Entry) (bool, error) {
	i, err := rs.Match(e)
	if err != nil {
		return false, err
	}

	return i >= 0, nil
}

func (rs *RuleSet) String() string {
	rules := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		rules = append(rules, r.String())
	}

	return fmt.Sprintf("recursive: %t; %s", rs.Recursive, strings.Join(rules, "; "))
}
