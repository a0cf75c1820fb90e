// Package audit runs a configuration document: for every top-level entry it
// resolves the directory path, builds the rule set and scans the tree.
//
// Entries are independent. A failure in one entry is recorded in its
// [Result] and does not stop the others. Results are delivered in document
// order even when entries are audited concurrently.
package audit
