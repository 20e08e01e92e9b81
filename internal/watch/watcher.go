// Package watch re-runs a handler when record files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/logging"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultDebounce is the quiet period after the last change before the
// handler runs.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the record files changed since the previous call,
// sorted. Its error is logged and watching continues.
type Handler func(ctx context.Context, changed []string) error

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPattern sets the file name pattern of record files.
func WithPattern(pattern string) Option {
	return func(w *Watcher) { w.pattern = pattern }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher watches directories for changes to record files.
type Watcher struct {
	dirs     []string
	handler  Handler
	pattern  string
	debounce time.Duration
	logger   *logging.Logger
}

// New creates a watcher over dirs. Nothing is watched until Run.
func New(dirs []string, handler Handler, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dirs:     dirs,
		handler:  handler,
		pattern:  store.DefaultPattern,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if handler == nil {
		return nil, errors.New("watch handler is required")
	}
	if !doublestar.ValidatePattern(w.pattern) {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidPattern, w.pattern)
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w, nil
}

// IsRecordFile reports whether path names a record file.
func (w *Watcher) IsRecordFile(path string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// Run watches until ctx is cancelled. Events are handled on the calling
// goroutine, so the handler never runs concurrently with itself.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.logger.Debug(ctx, "watching directory", zap.String("dir", dir))
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := w.handler(ctx, changed); err != nil {
				w.logger.Warn(ctx, "watch handler failed", zap.Strings("files", changed), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.IsRecordFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
