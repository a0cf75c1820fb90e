package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/macropower/declutter/pkg/filename"
)

// Entry is a single directory child being judged. Metadata is fetched on
// first use and cached, so evaluating many rules costs at most one lstat and
// one stat (the latter only for symbolic links).
//
// An Entry is not safe for concurrent use.
type Entry struct {
	info      fs.FileInfo
	target    fs.FileInfo
	infoErr   error
	targetErr error
	dirEntry  fs.DirEntry
	path      string
	name      string

	infoLoaded   bool
	targetLoaded bool
}

// NewEntry creates an [Entry] for the given path. The optional [fs.DirEntry]
// is used to avoid an extra lstat where the platform already provides one.
func NewEntry(path string, d fs.DirEntry) *Entry {
	name := filepath.Base(path)
	if d != nil {
		name = d.Name()
	}

	return &Entry{
		path:     path,
		name:     name,
		dirEntry: d,
	}
}

// Path returns the full path of the entry.
func (e *Entry) Path() string {
	return e.path
}

// Name returns the final path segment, including any extension.
func (e *Entry) Name() string {
	return e.name
}

// Ext returns the extension of the entry name. See [Extension].
func (e *Entry) Ext() (string, bool) {
	return Extension(e.name)
}

// Info returns the entry's own metadata, without following symbolic links.
func (e *Entry) Info() (fs.FileInfo, error) {
	if !e.infoLoaded {
		e.infoLoaded = true

		if e.dirEntry != nil {
			e.info, e.infoErr = e.dirEntry.Info()
		} else {
			e.info, e.infoErr = os.Lstat(e.path)
		}

		if e.infoErr != nil {
			e.infoErr = fmt.Errorf("%w: %s: %w", ErrMetadataUnavailable, e.path, e.infoErr)
		}
	}

	return e.info, e.infoErr
}

// Size returns the size of the entry in bytes.
func (e *Entry) Size() (uint64, error) {
	info, err := e.Info()
	if err != nil {
		return 0, err
	}

	return uint64(max(0, info.Size())), nil //nolint:gosec // Uses max.
}

// ModTime returns the modification time of the entry.
func (e *Entry) ModTime() (time.Time, error) {
	info, err := e.Info()
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

// IsSymlink reports whether the entry itself is a symbolic link.
func (e *Entry) IsSymlink() (bool, error) {
	info, err := e.Info()
	if err != nil {
		return false, err
	}

	return info.Mode()&fs.ModeSymlink != 0, nil
}

// IsDir reports whether the entry is a directory, following symbolic links.
// A link whose target cannot be resolved is not a directory.
func (e *Entry) IsDir() (bool, error) {
	mode, err := e.targetMode()
	if err != nil {
		return false, err
	}

	return mode.IsDir(), nil
}

// IsRegular reports whether the entry is a regular file, following symbolic
// links. A link whose target cannot be resolved is not a regular file.
func (e *Entry) IsRegular() (bool, error) {
	mode, err := e.targetMode()
	if err != nil {
		return false, err
	}

	return mode.IsRegular(), nil
}

// targetMode returns the file mode of the entry after resolving symbolic
// links. Only the entry's own metadata is required. A link whose target
// cannot be stat'ed, such as a dangling or self-referencing link, reports
// [fs.ModeSymlink].
func (e *Entry) targetMode() (fs.FileMode, error) {
	info, err := e.Info()
	if err != nil {
		return 0, err
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		return info.Mode(), nil
	}

	if !e.targetLoaded {
		e.targetLoaded = true
		e.target, e.targetErr = os.Stat(e.path)
	}

	if e.targetErr != nil {
		return fs.ModeSymlink, nil
	}

	return e.target.Mode(), nil
}

// Extension returns the extension of name without the dot. See
// [filename.Ext].
func Extension(name string) (string, bool) {
	return filename.Ext(name)
}
