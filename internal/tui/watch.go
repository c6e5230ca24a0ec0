package tui

import (
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrNothingToWatch indicates none of the requested paths exist.
var ErrNothingToWatch = errors.New("no watchable paths")

// Watcher coalesces filesystem events on the coordination inputs (the
// state database and .git/refs) into a simple change channel for the
// board.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher watches the given paths. Paths that cannot be watched are
// skipped; the watcher is still useful with a partial set.
func NewWatcher(paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	var added int
	for _, path := range paths {
		if err := fsw.Add(path); err == nil {
			added++
		}
	}
	if added == 0 {
		fsw.Close()
		return nil, ErrNothingToWatch
	}

	w := &Watcher{
		watcher: fsw,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes returns the channel that receives one value per batch of
// filesystem activity. Closed when the watcher is closed.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching and closes the change channel.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Coalesce: drop the signal if one is already pending.
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
