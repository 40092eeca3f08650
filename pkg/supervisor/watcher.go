package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/flotilla/internal/logger"
)

// DefaultWatchDebounce coalesces bursts of file events (editors often write
// a file several times in quick succession) into one trigger.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watcher watches configured paths with fsnotify and fires a callback once
// on the first (debounced) change. The supervisor wires the callback to the
// fleet's cancellation so an outer init system can restart Flotilla with
// the new configuration.
type Watcher struct {
	paths    []string
	debounce time.Duration
	onChange func()

	fireOnce sync.Once
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewWatcher creates a watcher component. onChange is invoked at most once,
// after the debounce window following the first relevant event.
func NewWatcher(paths []string, debounce time.Duration, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &Watcher{
		paths:    paths,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start watches the configured paths until ctx is cancelled or Stop is
// called. Returns ctx.Err() on cancellation so the exit counts as a clean
// cancellation outcome, and nil when stopped explicitly.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, path := range w.paths {
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		logger.Debug("Watching path", logger.Path(path))
	}

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.stopCh:
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("File event", logger.Path(event.Name), "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
				debounceCh = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}

		case <-debounceCh:
			debounceCh = nil
			w.fire()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", "error", err)
		}
	}
}

// Stop releases the watcher. Safe to call whether or not Start is running.
func (w *Watcher) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	return nil
}

// fire invokes the change callback exactly once.
func (w *Watcher) fire() {
	w.fireOnce.Do(func() {
		logger.Info("Watched path changed, initiating graceful fleet stop")
		if w.onChange != nil {
			w.onChange()
		}
	})
}
