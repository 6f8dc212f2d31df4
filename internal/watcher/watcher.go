// Package watcher reports document additions, edits and removals in a
// directory so they can be mirrored into the index.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docent/internal/logger"
)

// DefaultDebounce is how long a path must be quiet before its change is reported.
// Editors and copies produce bursts of Create/Write events for one file.
const DefaultDebounce = 500 * time.Millisecond

// ChangeKind classifies a change.
type ChangeKind int

const (
	// ChangeUpserted means the file was created or modified.
	ChangeUpserted ChangeKind = iota
	// ChangeRemoved means the file was deleted or moved away.
	ChangeRemoved
)

// String returns the string representation.
func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "upserted"
}

// Change is a settled change to one file.
type Change struct {
	Path string
	Kind ChangeKind
}

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir      string
	supports func(name string) bool
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// New starts watching dir for files accepted by supports. A nil supports
// accepts every visible file.
func New(dir string, supports func(name string) bool, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{dir: dir, supports: supports, debounce: debounce, fs: fsw}, nil
}

// Existing lists supported files already present in the directory, sorted.
func (w *Watcher) Existing() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !w.supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	return paths, nil
}

// Run delivers settled changes to handle until ctx is cancelled.
// Changes that arrive together are delivered in path order.
func (w *Watcher) Run(ctx context.Context, handle func(Change)) error {
	defer w.fs.Close()

	pending := make(map[string]Change)
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			change, ok := w.classify(ev)
			if !ok {
				continue
			}
			pending[change.Path] = change
			flush = time.After(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("Watcher overflowed; some changes in %s may be missed", w.dir)
				continue
			}
			logger.Warn("Watcher error: %v", err)

		case <-flush:
			flush = nil
			for _, c := range drain(pending) {
				handle(c)
			}
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) classify(ev fsnotify.Event) (Change, bool) {
	if !w.supported(filepath.Base(ev.Name)) {
		return Change{}, false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Path: ev.Name, Kind: ChangeRemoved}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() {
			return Change{}, false
		}
		return Change{Path: ev.Name, Kind: ChangeUpserted}, true
	default:
		return Change{}, false
	}
}

// supported reports whether name is a visible file the caller accepts.
func (w *Watcher) supported(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return w.supports == nil || w.supports(name)
}

func drain(pending map[string]Change) []Change {
	out := make([]Change, 0, len(pending))
	for path, c := range pending {
		out = append(out, c)
		delete(pending, path)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
