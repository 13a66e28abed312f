package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const watchDebounce = 200 * time.Millisecond

// Watcher calls OnChange when the config file is written, created or
// replaced. Bursts of events (editors often write a file in several steps)
// are coalesced into one call.
type Watcher struct {
	OnChange func()

	watcher  *fsnotify.Watcher
	filePath string
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

func NewWatcher(filePath string, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		OnChange: onChange,
		watcher:  w,
		filePath: filePath,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory of the file, which keeps working when the
// file is replaced by a rename.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.filePath)
	if err := w.watcher.Add(dir); err != nil {
		return pkgerrors.Wrapf(err, "failed to watch %s", dir)
	}
	w.running = true

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.filePath)
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logrus.WithField("op", event.Op.String()).Trace("config file event")
				debounce.Reset(watchDebounce)
			}
		case <-debounce.C:
			logrus.WithField("file", w.filePath).Debug("config file changed")
			if w.OnChange != nil {
				w.OnChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warn("config watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
