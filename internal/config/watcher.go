package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals after the watched file has been written or replaced.
// Bursts of events collapse into a single pending signal.
type Watcher struct {
	absolutePath string
	inner        *fsnotify.Watcher

	terminate chan struct{}
	signal    chan struct{}
	done      chan struct{}
}

// NewWatcher starts watching path. The file itself may not exist yet; its
// directory is created if needed.
func NewWatcher(path string) (*Watcher, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	parent := filepath.Dir(absolutePath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	// watch the directory so atomic renames onto the file are seen
	if err := inner.Add(parent); err != nil {
		inner.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	w := &Watcher{
		absolutePath: absolutePath,
		inner:        inner,
		terminate:    make(chan struct{}),
		signal:       make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() {
	close(w.terminate)
	<-w.done
}

// Changes returns a channel that receives after each change. It is closed
// when the watcher stops.
func (w *Watcher) Changes() <-chan struct{} {
	return w.signal
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.signal)
	defer w.inner.Close() //nolint:errcheck

	for {
		select {
		case event, ok := <-w.inner.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			eventPath, _ := filepath.Abs(event.Name)
			if eventPath != w.absolutePath {
				continue
			}
			select {
			case w.signal <- struct{}{}:
			default:
			}

		case _, ok := <-w.inner.Errors:
			if !ok {
				return
			}

		case <-w.terminate:
			return
		}
	}
}
