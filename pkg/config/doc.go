// Package config loads declutter configuration documents and builds
// [rule.RuleSet]s from them.
//
// A document is a YAML mapping from directory paths to rule set mappings:
//
//	~/Downloads:
//	  recursive: false
//	  allow-type: [dir, .pdf]
//	  max-size: 50MB
//
// [Parse] and [Load] decode the document preserving key order, and
// [BuildRuleSet] turns each rule set mapping into a normalized
// [rule.RuleSet]. Building never touches the filesystem.
package config
