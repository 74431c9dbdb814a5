package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 300 * time.Millisecond

// Callback runs once per settled change to the watched file.
type Callback func(path string)

// FileWatcher reports changes to a single file. It watches the file's
// directory so editors that save by writing a new file and renaming it over
// the old one are still seen.
type FileWatcher struct {
	path      string
	debounce  time.Duration
	callback  Callback
	fsWatcher *fsnotify.Watcher
	logger    *zap.Logger

	mu     sync.Mutex
	timer  *time.Timer
	cancel chan struct{}
	once   sync.Once
	done   chan struct{}
}

// New starts watching path. A non-positive debounce uses DefaultDebounce.
func New(path string, debounce time.Duration, cb Callback, logger *zap.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsW.Add(filepath.Dir(abs)); err != nil {
		fsW.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &FileWatcher{
		path:      abs,
		debounce:  debounce,
		callback:  cb,
		fsWatcher: fsW,
		logger:    logger.With(zap.String("component", "watch"), zap.String("path", abs)),
		cancel:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

func (w *FileWatcher) Path() string { return w.path }

// watchLoop processes fsnotify events with debouncing.
func (w *FileWatcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.cancel:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule resets the debounce timer on each event.
func (w *FileWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *FileWatcher) fire() {
	select {
	case <-w.cancel:
		return
	default:
	}
	w.logger.Debug("file changed")
	if w.callback != nil {
		w.callback(w.path)
	}
}

// Close stops watching. Pending debounced callbacks are dropped.
func (w *FileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.cancel)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsWatcher.Close()
		<-w.done
	})
	return err
}
