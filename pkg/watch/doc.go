// Package watch re-runs a function when watched directory trees or files
// change.
//
// Directories are watched with fsnotify. Bursts of events are debounced into
// one call.
package watch
