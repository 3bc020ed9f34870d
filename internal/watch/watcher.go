// Package watch implements watch mode: re-run the first incomplete
// exercise whenever a source file under the exercises tree is saved,
// advancing to the next exercise once the current one passes.
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write
// before triggering a run. Editors often emit several events per save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher emits a debounced notification whenever a Haskell source
// file under the watched tree changes.
type Watcher struct {
	fw       *fsnotify.Watcher
	changes  chan string
	debounce time.Duration
}

// NewWatcher watches root and all its subdirectories.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// fsnotify does not recurse, so every directory is added
	// individually.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fw:       fw,
		changes:  make(chan string, 1),
		debounce: debounce,
	}, nil
}

// Changes returns the channel of debounced change notifications. Each
// value is the path of the last file that changed in a burst.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run processes raw filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.changes <- pending:
			default:
				// A trigger is already queued; dropping this one loses
				// nothing because the consumer re-reads the file state.
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// relevant reports whether an event should trigger a run: writes,
// creates and renames of Haskell sources.
func relevant(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, ".hs") {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}
