// Package scan walks a directory tree and judges every entry against a
// [rule.RuleSet].
//
// Entries matching no rule are reported as [Violation]s, in depth-first
// pre-order with children sorted by name. Allowed subdirectories are entered
// when the rule set is recursive. The scanner only reads the filesystem.
package scan
