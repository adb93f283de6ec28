package server

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"makesite/internal/logfields"
)

// watcher turns filesystem events below the watched paths into rebuild
// triggers.
type watcher struct {
	fs     *fsnotify.Watcher
	dirs   []string        // watched recursively
	files  map[string]bool // watched through their parent directory
	ignore []string
	logger *slog.Logger
}

func newWatcher(paths, ignore []string, logger *slog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{fs: fw, files: map[string]bool{}, logger: logger}
	for _, p := range ignore {
		w.ignore = append(w.ignore, absClean(p))
	}

	watched := map[string]bool{}
	add := func(dir string) {
		if watched[dir] {
			return
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
			return
		}
		watched[dir] = true
		logger.Debug("Watching directory", logfields.Path(dir))
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		p = absClean(p)
		if !info.IsDir() {
			// Editors often save by renaming over the file, so the parent is
			// what gets watched.
			w.files[p] = true
			add(filepath.Dir(p))
			continue
		}
		w.dirs = append(w.dirs, p)
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() && !w.ignored(path) {
				add(path)
			}
			return nil
		})
	}
	return w, nil
}

func (w *watcher) Close() error { return w.fs.Close() }

// run forwards relevant events to trigger until ctx is done.
func (w *watcher) run(ctx context.Context, trigger func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fs.Add(ev.Name)
				}
			}
			w.logger.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// relevant reports whether a change to name should trigger a rebuild.
func (w *watcher) relevant(name string) bool {
	name = absClean(name)
	if isTempFile(name) || w.ignored(name) {
		return false
	}
	if w.files[name] {
		return true
	}
	for _, dir := range w.dirs {
		if within(name, dir) {
			return true
		}
	}
	return false
}

func (w *watcher) ignored(name string) bool {
	for _, dir := range w.ignore {
		if within(absClean(name), dir) {
			return true
		}
	}
	return false
}

// isTempFile matches hidden files and editor swap or backup files.
func isTempFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}

func within(name, dir string) bool {
	rel, err := filepath.Rel(dir, name)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// debouncer signals on out once triggers have been quiet for delay. A signal
// that is still pending absorbs new ones.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	out   chan<- struct{}
}

func newDebouncer(delay time.Duration, out chan<- struct{}) *debouncer {
	return &debouncer{delay: delay, out: out}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		select {
		case d.out <- struct{}{}:
		default:
		}
	})
}
