package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval is the delay after an fsnotify event before the callback
// fires. Editors and atomic-rename writers emit bursts of events per save.
const DebounceInterval = 200 * time.Millisecond

// Watcher invokes a callback when anything under a directory changes.
type Watcher struct {
	dir      string
	fsw      *fsnotify.Watcher
	onChange func(ctx context.Context)
}

// New creates a Watcher over dir. The directory must exist. onChange is
// called from the watch goroutine after each debounced burst of filesystem
// events.
func New(dir string, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, fsw: fsw, onChange: onChange}, nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	slog.InfoContext(ctx, "watching directory", "dir", w.dir)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(DebounceInterval)
				fire = debounce.C
			} else {
				debounce.Reset(DebounceInterval)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", "error", err)
		case <-fire:
			debounce = nil
			fire = nil
			w.onChange(ctx)
		}
	}
}
