// Package filename interprets the final segment of a path.
package filename

import (
	"path/filepath"
	"strings"
)

// Ext returns the text after the final "." of name, without the dot. Names
// without a dot, and names whose only dot is the leading character (e.g.
// ".bashrc"), have no extension. Only the final path segment is considered.
// Comparison is left to the caller and is case-sensitive.
func Ext(name string) (string, bool) {
	name = filepath.Base(name)

	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}

	return name[i+1:], true
}
