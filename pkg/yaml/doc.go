// Package yaml wraps [github.com/goccy/go-yaml] with the decoding, encoding
// and error conventions used throughout declutter.
//
// Decode and schema validation failures are returned as [*Error], which
// records the offending token or YAML path so that the message can point at
// the exact line of the configuration document.
package yaml
