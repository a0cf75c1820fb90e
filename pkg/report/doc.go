// Package report renders audit results.
//
// The text format prints each violation as it is found and colors output
// when writing to a terminal. The json and yaml formats write one document
// after the run.
package report
