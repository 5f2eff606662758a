// Package hotfolder reports video files that appear in a watched directory.
package hotfolder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions are the video containers picked up when none are given.
var DefaultExtensions = []string{".mp4", ".mkv", ".mov", ".avi", ".webm"}

// Folder watches a directory and reports each new video once its writes
// have settled.
type Folder struct {
	dir        string
	extensions map[string]bool
	settle     time.Duration
	ignore     func(name string) bool
	logger     *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option configures a Folder.
type Option func(*Folder)

// WithExtensions replaces the accepted file extensions. Matching is case
// insensitive and the leading dot is optional.
func WithExtensions(exts ...string) Option {
	return func(f *Folder) {
		f.extensions = normalize(exts)
	}
}

// WithSettle sets how long a file must go without writes before it is
// reported. Default is 2s.
func WithSettle(d time.Duration) Option {
	return func(f *Folder) {
		f.settle = d
	}
}

// WithIgnore skips files for which ignore returns true, such as the
// renderer's own outputs.
func WithIgnore(ignore func(name string) bool) Option {
	return func(f *Folder) {
		f.ignore = ignore
	}
}

// New creates a Folder for dir.
func New(dir string, logger *slog.Logger, opts ...Option) *Folder {
	f := &Folder{
		dir:        filepath.Clean(dir),
		extensions: normalize(DefaultExtensions),
		settle:     2 * time.Second,
		logger:     logger,
		timers:     make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Accepts reports whether name would be picked up.
func (f *Folder) Accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !f.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}
	return f.ignore == nil || !f.ignore(base)
}

// Existing returns the accepted files already in the directory, sorted by
// name.
func (f *Folder) Existing() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && f.Accepts(e.Name()) {
			paths = append(paths, filepath.Join(f.dir, e.Name()))
		}
	}
	return paths, nil
}

// Run watches the directory until ctx is cancelled, calling found from its
// own goroutine for every settled file. found is never called concurrently.
func (f *Folder) Run(ctx context.Context, found func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(f.dir); err != nil {
		return err
	}

	settled := make(chan string, 16)
	defer f.stopTimers()

	f.logger.Info("Watching folder", "dir", f.dir, "settle", f.settle)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !f.Accepts(event.Name) {
				continue
			}
			f.touch(ctx, filepath.Clean(event.Name), settled)

		case path := <-settled:
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			f.logger.Debug("File settled", "path", path, "size", info.Size())
			found(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("Folder watcher error", "error", err)
		}
	}
}

// touch restarts the settle timer for path.
func (f *Folder) touch(ctx context.Context, path string, settled chan<- string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.timers[path]; ok && t.Stop() {
		t.Reset(f.settle)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(f.settle, func() {
		f.mu.Lock()
		if f.timers[path] == t {
			delete(f.timers, path)
		}
		f.mu.Unlock()
		select {
		case settled <- path:
		case <-ctx.Done():
		}
	})
	f.timers[path] = t
}

func (f *Folder) stopTimers() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for path, t := range f.timers {
		t.Stop()
		delete(f.timers, path)
	}
}

func normalize(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
