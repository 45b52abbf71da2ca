package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/rshade/feedlist/internal/registry"
)

// Watcher reports changes to one feed file. The containing directory is
// watched so editors that replace the file on save are still seen.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	logger zerolog.Logger

	mu        sync.Mutex
	listeners map[int]chan struct{}
	nextID    int

	done chan struct{}
	wg   sync.WaitGroup
}

// Watchers shares one Watcher per absolute path.
type Watchers = registry.Subscriptions[string, *Watcher]

// NewWatchers creates a shared watcher registry.
func NewWatchers(logger zerolog.Logger) *Watchers {
	return registry.NewSubscriptions(func(_ context.Context, path string) (*Watcher, func(), error) {
		w, err := newWatcher(path, logger)
		if err != nil {
			return nil, nil, err
		}
		return w, w.stop, nil
	})
}

// Watch subscribes to changes of path. The release function must be called
// when the caller no longer needs notifications.
func Watch(ctx context.Context, watchers *Watchers, path string) (*Watcher, func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("resolving feed path: %w", err)
	}
	return watchers.Subscribe(ctx, abs)
}

func newWatcher(path string, logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err = fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:      filepath.Clean(path),
		fsw:       fsw,
		logger:    logger.With().Str("path", path).Logger(),
		listeners: make(map[int]chan struct{}),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Listen returns a channel that receives a value after each change. Changes
// that arrive before the previous one is read are coalesced. The release func
// unsubscribes and closes the channel.
func (w *Watcher) Listen() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = ch
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			close(ch)
			w.mu.Unlock()
		})
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug().Str("op", ev.Op.String()).Msg("feed file changed")
			w.broadcast()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (w *Watcher) stop() {
	close(w.done)
	_ = w.fsw.Close()
	w.wg.Wait()
}
