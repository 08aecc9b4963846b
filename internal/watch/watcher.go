// Package watch reports writes to a SQLite database file made by other processes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher watches the directory holding a database file and calls onChange
// once writes to the file, its WAL or its rollback journal settle.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	running  bool

	// Debounce tracking
	pending   *time.Timer
	pendingMu sync.Mutex

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for dbPath. onChange runs on its own goroutine.
func New(dbPath string, debounce time.Duration, onChange func()) (*Watcher, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		path:     absPath,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsWatcher,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. The database directory must exist.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.eventLoop()

	log.Debug().Str("path", w.path).Msg("Database watcher started")
	return nil
}

// Stop stops the watcher and drops any pending notification.
// A stopped watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		w.cancel()
		w.watcher.Close()
	})
	w.wg.Wait()

	w.pendingMu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.pendingMu.Unlock()

	if wasRunning {
		log.Debug().Msg("Database watcher stopped")
	}
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Database watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	log.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("Database file changed")

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	if w.ctx.Err() != nil {
		return
	}
	w.onChange()
}

// matches reports whether name is the database file or one of its write-side companions.
func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	switch abs {
	case w.path, w.path + "-wal", w.path + "-journal":
		return true
	}
	return false
}
