// Package rule defines the predicates used to judge directory entries.
//
// A [RuleSet] is an ordered list of [Rule]s plus a recursion flag. An entry is
// allowed when ANY rule in the set matches it; rules are never combined with
// AND. The set of rule kinds is closed:
//   - [AllowType]: the entry is a directory, a regular file, or has one of
//     the listed extensions
//   - [AllowName]: the entry's file name equals one of the listed names
//   - [MinSize] / [MaxSize]: inclusive size bounds in bytes
//   - [AllowExpr]: a CEL expression over the entry's attributes
//
// Entries are represented by [Entry], which reads filesystem metadata lazily
// and at most once, so all rules of a set share a single stat.
package rule
