package conffile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last write before
// reloading.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used for reload results. Reload failures are
// logged at warn level.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher is a File that reloads itself when the file on disk changes. A
// failed reload keeps the last good contents. Lookups are safe for
// concurrent use with reloads.
type Watcher struct {
	path     string
	current  atomic.Pointer[File]
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Watch loads path and starts watching it until ctx is cancelled or Close
// is called. The initial load must succeed.
func Watch(ctx context.Context, path string, opts ...WatchOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("conffile: resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     filepath.Clean(abs),
		debounce: defaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	f, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	w.current.Store(f)

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("conffile: watch %s: %w", path, err)
	}
	// Editors often replace the file, so watch the directory.
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("conffile: watch %s: %w", path, err)
	}
	w.fs = fs

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	return w, nil
}

// File returns the current contents.
func (w *Watcher) File() *File {
	if w == nil {
		return nil
	}
	return w.current.Load()
}

// ListSize implements settings.ConfigReader against the current contents.
func (w *Watcher) ListSize(section, key string) int {
	return w.File().ListSize(section, key)
}

// ListString implements settings.ConfigReader against the current contents.
func (w *Watcher) ListString(section, key string, index int) string {
	return w.File().ListString(section, key, index)
}

// Reload reads the file now. On error the previous contents are kept.
func (w *Watcher) Reload() error {
	f, err := Load(w.path)
	if err != nil {
		w.logger.Warn("conffile: reload failed", slog.String("path", w.path), slog.String("error", err.Error()))
		return err
	}
	w.current.Store(f)
	w.logger.Debug("conffile: reloaded", slog.String("path", w.path))
	return nil
}

// Close stops watching. The last loaded contents stay readable.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = w.Reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("conffile: watch error", slog.String("path", w.path), slog.String("error", err.Error()))
		}
	}
}
