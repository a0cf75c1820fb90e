package rule

import "errors"

var (
	// ErrEmptyRuleSet indicates a rule set without any rules. Such a set would
	// report every entry as clutter.
	ErrEmptyRuleSet = errors.New("empty rule set")
	// ErrMetadataUnavailable indicates that an entry's metadata could not be
	// read, e.g. because of missing permissions or because it vanished.
	ErrMetadataUnavailable = errors.New("metadata unavailable")
)
