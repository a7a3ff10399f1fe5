package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"calibcat/internal/logging"
)

const defaultDebounce = 500 * time.Millisecond

// RunFunc performs one run and returns the data directories to watch until
// the next one. A nil slice keeps the current watch list.
type RunFunc func(ctx context.Context) ([]string, error)

// Watcher drives RunFunc from filesystem events.
type Watcher struct {
	configPath string
	configDir  string
	debounce   time.Duration
	logger     *slog.Logger
	fsw        *fsnotify.Watcher
	dirs       map[string]bool
}

// New watches the directory holding configPath. Directories are watched
// rather than files so that editors saving through a rename are seen.
func New(configPath string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		configPath: abs,
		configDir:  filepath.Dir(abs),
		debounce:   debounce,
		logger:     logging.NewComponentLogger(logger, "watch"),
		fsw:        fsw,
		dirs:       map[string]bool{},
	}
	if err := fsw.Add(w.configDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls fn once, then again after each debounced change, until ctx is
// done. Failed runs are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn RunFunc) error {
	w.trigger(ctx, fn, "startup")

	var (
		timer   *time.Timer
		pending <-chan time.Time
		reason  string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", logging.Path(event.Name), logging.String("op", event.Op.String()))
			reason = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
			)
		case <-pending:
			pending = nil
			w.trigger(ctx, fn, reason)
		}
	}
}

func (w *Watcher) trigger(ctx context.Context, fn RunFunc, reason string) {
	w.logger.Info("starting run", logging.String("trigger", reason))
	dirs, err := fn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("run failed, waiting for the next change",
			logging.Error(err),
			logging.String(logging.FieldEventType, "run_failed"),
		)
	}
	if dirs != nil {
		w.sync(dirs)
	}
}

// sync makes the watched data directories equal dirs.
func (w *Watcher) sync(dirs []string) {
	want := map[string]bool{}
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		want[abs] = true
	}
	for d := range w.dirs {
		if want[d] {
			continue
		}
		if d != w.configDir {
			_ = w.fsw.Remove(d)
		}
		delete(w.dirs, d)
	}
	for d := range want {
		if w.dirs[d] {
			continue
		}
		if d != w.configDir {
			if err := w.fsw.Add(d); err != nil {
				logging.WarnWithContext(w.logger, "cannot watch directory", "watch_error",
					logging.Path(d),
					logging.Error(err),
					logging.String(logging.FieldImpact, "changes in this directory are not seen"),
				)
				continue
			}
		}
		w.dirs[d] = true
	}
}

// Dirs returns the watched data directories.
func (w *Watcher) Dirs() []string {
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	return out
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Name == w.configPath {
		return true
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.dirs[filepath.Dir(event.Name)]
}
