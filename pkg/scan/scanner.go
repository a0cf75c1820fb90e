package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/macropower/declutter/pkg/rule"
)

// Scanner checks directory trees against rule sets.
//
// A Scanner is not safe for concurrent use; create one per goroutine.
type Scanner struct {
	reporter       Reporter
	visited        map[string]struct{}
	maxDepth       int
	followSymlinks bool
}

// Option configures a [Scanner].
type Option func(*Scanner)

// WithReporter sets the [Reporter] receiving violations. By default they are
// discarded.
func WithReporter(r Reporter) Option {
	return func(s *Scanner) {
		s.reporter = r
	}
}

// WithFollowSymlinks enters allowed symbolic links to directories. Each
// directory is entered at most once per scan.
func WithFollowSymlinks(follow bool) Option {
	return func(s *Scanner) {
		s.followSymlinks = follow
	}
}

// WithMaxDepth limits how deep the scan descends. Depth 1 checks only the
// children of the root. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		s.maxDepth = max(0, depth)
	}
}

// NewScanner creates a new [Scanner].
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{reporter: discard{}}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// frame is a directory being walked: its sorted children and the index of
// the next child to judge.
type frame struct {
	path    string
	entries []fs.DirEntry
	depth   int
	next    int
}

// Scan judges every entry below root against rs and reports each violation.
// It returns true if no violation was found.
//
// Any I/O error aborts the scan, including metadata of an entry that a rule
// needs but cannot be read ([rule.ErrMetadataUnavailable]). Violations
// reported before the error remain reported.
func (s *Scanner) Scan(ctx context.Context, root string, rs *rule.RuleSet) (bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrNotADirectory, root, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	s.visited = map[string]struct{}{}
	if s.followSymlinks {
		err = s.visit(root)
		if err != nil {
			return false, err
		}
	}

	top, err := s.list(ctx, root, 1)
	if err != nil {
		return false, err
	}

	clean := true
	stack := []*frame{top}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next >= len(f.entries) {
			stack = stack[:len(stack)-1]
			continue
		}

		d := f.entries[f.next]
		f.next++

		entry := rule.NewEntry(filepath.Join(f.path, d.Name()), d)

		allowed, err := rs.Allows(entry)
		if err != nil {
			return false, fmt.Errorf("check %s: %w", entry.Path(), err)
		}

		if !allowed {
			clean = false

			s.report(root, entry)

			continue
		}

		enter, err := s.shouldEnter(entry, rs, f.depth)
		if err != nil {
			return false, err
		}

		if enter {
			child, err := s.list(ctx, entry.Path(), f.depth+1)
			if err != nil {
				return false, err
			}

			stack = append(stack, child)
		}
	}

	return clean, nil
}

// shouldEnter reports whether an allowed entry is a directory to descend into.
func (s *Scanner) shouldEnter(e *rule.Entry, rs *rule.RuleSet, depth int) (bool, error) {
	if !rs.Recursive || (s.maxDepth > 0 && depth >= s.maxDepth) {
		return false, nil
	}

	isDir, err := e.IsDir()
	if err != nil || !isDir {
		return false, err
	}

	isLink, err := e.IsSymlink()
	if err != nil {
		return false, err
	}

	if !s.followSymlinks {
		return !isLink, nil
	}

	canonical, err := filepath.EvalSymlinks(e.Path())
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", rule.ErrMetadataUnavailable, e.Path(), err)
	}

	if _, ok := s.visited[canonical]; ok {
		return false, nil
	}

	s.visited[canonical] = struct{}{}

	return true, nil
}

func (s *Scanner) visit(path string) error {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotADirectory, path, err)
	}

	s.visited[canonical] = struct{}{}

	return nil
}

// report passes a violation to the reporter. Size and Dir are filled on a
// best-effort basis, so an entry that vanished after being judged is still
// reported.
func (s *Scanner) report(root string, e *rule.Entry) {
	v := Violation{Path: e.Path(), Root: root}

	size, err := e.Size()
	if err == nil {
		v.Size = size
	}

	isDir, err := e.IsDir()
	if err == nil {
		v.Dir = isDir
	}

	s.reporter.Report(v)
}

// list reads the children of a directory, sorted by name.
func (s *Scanner) list(ctx context.Context, path string, depth int) (*frame, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	dir, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListFailed, path, err)
	}
	defer dir.Close() //nolint:errcheck // Read-only handle.

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListFailed, path, err)
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return &frame{path: path, entries: entries, depth: depth}, nil
}
