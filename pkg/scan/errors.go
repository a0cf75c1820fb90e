package scan

import "errors"

var (
	// ErrNotADirectory indicates a scan root that does not exist or is not a
	// directory.
	ErrNotADirectory = errors.New("path is not a directory")
	// ErrListFailed indicates a directory whose children could not be listed.
	ErrListFailed = errors.New("read directory failed")
)
