package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/declutter/pkg/log"
)

// DefaultDebounce is the quiet period after the last event before the
// function runs.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches directory trees and individual files.
type Watcher struct {
	fw *fsnotify.Watcher

	// Directories registered with fsnotify.
	watchedDirs map[string]struct{}
	// Directories whose every child is relevant.
	treeDirs map[string]struct{}
	// Files that are relevant on their own.
	watchedFiles map[string]struct{}

	debounce time.Duration
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values use
// [DefaultDebounce].
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a new [Watcher]. It must be closed with [Watcher.Close].
func New(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fw:           fw,
		watchedDirs:  make(map[string]struct{}),
		treeDirs:     make(map[string]struct{}),
		watchedFiles: make(map[string]struct{}),
		debounce:     DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// AddTree watches root and every directory below it. Symbolic links are not
// followed.
func (w *Watcher) AddTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		err = w.addDir(path)
		if err != nil {
			return err
		}

		w.treeDirs[path] = struct{}{}

		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %q: %w", root, err)
	}

	return nil
}

// AddFile watches a single file. Its directory is watched so that the file
// may be replaced or created later.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	err = w.addDir(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	w.watchedFiles[abs] = struct{}{}

	return nil
}

func (w *Watcher) addDir(dir string) error {
	if _, ok := w.watchedDirs[dir]; ok {
		return nil
	}

	err := w.fw.Add(dir)
	if err != nil {
		return fmt.Errorf("add path to watcher: %w", err)
	}

	w.watchedDirs[dir] = struct{}{}

	return nil
}

// Reset removes all watches.
func (w *Watcher) Reset(ctx context.Context) {
	logger := log.WithContext(ctx)

	removed := 0
	for dir := range w.watchedDirs {
		err := w.fw.Remove(dir)
		if errors.Is(err, fsnotify.ErrNonExistentWatch) {
			continue
		}
		if err != nil {
			logger.ErrorContext(ctx, "remove path from watcher", slog.Any("err", err))
		}

		removed++
	}

	logger.DebugContext(ctx, "removed file watchers", slog.Int("count", removed))

	clear(w.watchedDirs)
	clear(w.treeDirs)
	clear(w.watchedFiles)
}

// Len returns the number of watched directories.
func (w *Watcher) Len() int {
	return len(w.watchedDirs)
}

// Relevant reports whether a change to path affects a watched tree or file.
func (w *Watcher) Relevant(path string) bool {
	if _, ok := w.watchedFiles[path]; ok {
		return true
	}
	if _, ok := w.treeDirs[path]; ok {
		return true
	}

	_, ok := w.treeDirs[filepath.Dir(path)]

	return ok
}

// Run calls fn after each burst of relevant changes, until ctx is done or fn
// returns an error. fn runs on the calling goroutine, so it may update the
// watches.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	logger := log.WithContext(ctx)

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fw.Events:
			if !ok {
				return nil
			}

			// Ignore events that are not related to content changes.
			if evt.Has(fsnotify.Chmod) {
				continue
			}
			if !w.Relevant(evt.Name) {
				continue
			}

			logger.DebugContext(ctx, "file event", slog.String("event", evt.String()))

			fire = time.After(w.debounce)

		case <-fire:
			fire = nil

			err := fn(ctx)
			if err != nil {
				return err
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watch error", slog.Any("err", err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}

	return nil
}
