package scenefile

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/greed/internal/logger"
)

// Watcher reports changes to one scene file. Bursts of events closer than
// the debounce interval collapse into one reload notification.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	path     string
	debounce time.Duration

	reloads chan struct{}
	errors  chan error
	done    chan struct{}
	log     *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching path. The containing directory is watched so
// editors that save by renaming over the file are still seen.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		fsnotify: fsWatch,
		path:     abs,
		debounce: debounce,
		reloads:  make(chan struct{}, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
		log:      logger.Named("scenefile").With(zap.String("path", abs)),
	}
	go w.start()
	return w, nil
}

// Reloads delivers one value per settled change. The channel is buffered;
// a pending notification absorbs later ones.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// Errors delivers watcher failures. Errors are dropped when nobody reads.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Later calls return the first call's result.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fsnotify.Close()
	})
	return w.closeErr
}

func (w *Watcher) start() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path || !e.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.log.Debug("scene file changed", zap.Stringer("op", e.Op))
			timer.Reset(w.debounce)

		case <-timer.C:
			select {
			case w.reloads <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
			select {
			case w.errors <- err:
			default:
			}

		case <-w.done:
			return
		}
	}
}
