// Package watch auto-imports snapshot files dropped into the import
// directory. A settled *.json file is merged into the book and renamed
// to *.json.done so it is never ingested twice.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rolo/internal/book"
	"rolo/internal/logging"
)

// Applier merges a decoded snapshot into the live book. The command
// interpreter implements it; its mutex keeps imports and the session
// loop from racing.
type Applier interface {
	ImportSnapshot(ctx context.Context, data []byte) (book.MergeResult, error)
}

// Importer watches one directory for snapshot files. Rapid write events
// on the same file are debounced so a file is imported once, after its
// writer has finished.
type Importer struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	applier     Applier
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks importer activity for the session footer and debugging.
type Stats struct {
	FilesSeen     int
	Imports       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// New creates an Importer over dir. Start must be called before any
// files are picked up.
func New(dir string, applier Applier, debounce time.Duration) (*Importer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Importer{
		watcher:     watcher,
		applier:     applier,
		dir:         dir,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching the import directory. Non-blocking; the event
// loop runs in its own goroutine until Stop or context cancellation.
func (im *Importer) Start(ctx context.Context) error {
	im.mu.Lock()
	if im.running {
		im.mu.Unlock()
		return nil
	}
	im.running = true
	im.mu.Unlock()

	if err := os.MkdirAll(im.dir, 0o755); err != nil {
		logging.Get(logging.CategoryWatch).Warn("Failed to create import dir %s: %v", im.dir, err)
	}
	if err := im.watcher.Add(im.dir); err != nil {
		logging.Get(logging.CategoryWatch).Warn("Initial watch of %s failed: %v", im.dir, err)
	} else {
		logging.Watch("Watching import directory: %s", im.dir)
	}

	go im.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to drain.
func (im *Importer) Stop() {
	im.mu.Lock()
	if !im.running {
		im.mu.Unlock()
		return
	}
	im.running = false
	im.mu.Unlock()

	close(im.stopCh)
	<-im.doneCh

	if err := im.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Error("Error closing watcher: %v", err)
	}
	logging.Watch("Import watcher stopped")
}

func (im *Importer) run(ctx context.Context) {
	defer close(im.doneCh)

	poll := im.debounceDur / 5
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	if poll > 100*time.Millisecond {
		poll = 100 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("Import watcher context cancelled")
			return

		case <-im.stopCh:
			return

		case event, ok := <-im.watcher.Events:
			if !ok {
				return
			}
			im.handleEvent(event)

		case err, ok := <-im.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			im.mu.Lock()
			im.stats.Errors++
			im.mu.Unlock()

		case <-ticker.C:
			im.processSettled(ctx)
		}
	}
}

func (im *Importer) handleEvent(event fsnotify.Event) {
	if !isSnapshotFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	logging.WatchDebug("Event %s for %s", event.Op, event.Name)

	im.mu.Lock()
	if _, seen := im.debounceMap[event.Name]; !seen {
		im.stats.FilesSeen++
	}
	im.stats.LastEventTime = time.Now()
	im.stats.LastEventPath = event.Name
	im.debounceMap[event.Name] = time.Now()
	im.mu.Unlock()
}

// processSettled imports every file whose last event is older than the
// debounce window.
func (im *Importer) processSettled(ctx context.Context) {
	im.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range im.debounceMap {
		if now.Sub(eventTime) >= im.debounceDur {
			settled = append(settled, path)
			delete(im.debounceMap, path)
		}
	}
	im.mu.Unlock()

	for _, path := range settled {
		im.importFile(ctx, path)
	}
}

func (im *Importer) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.WatchDebug("File vanished before import: %s", path)
			return
		}
		logging.Get(logging.CategoryWatch).Error("Failed to read %s: %v", path, err)
		im.mu.Lock()
		im.stats.Errors++
		im.mu.Unlock()
		return
	}

	res, err := im.applier.ImportSnapshot(ctx, data)
	if err != nil {
		logging.Get(logging.CategoryWatch).Error("Import of %s failed: %v", path, err)
		im.mu.Lock()
		im.stats.Errors++
		im.mu.Unlock()
		return
	}

	logging.Watch("Imported %s: %d added, %d merged, %d notes",
		filepath.Base(path), res.ContactsAdded, res.ContactsMerged, res.NotesAdded)
	im.mu.Lock()
	im.stats.Imports++
	im.mu.Unlock()

	if err := os.Rename(path, path+".done"); err != nil {
		logging.Get(logging.CategoryWatch).Warn("Failed to mark %s done: %v", path, err)
	}
}

// TriggerImport imports every pending snapshot in the directory
// immediately, bypassing the debounce. Used at session start to drain
// files dropped while the watcher was not running.
func (im *Importer) TriggerImport(ctx context.Context) error {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotFile(entry.Name()) {
			continue
		}
		im.importFile(ctx, filepath.Join(im.dir, entry.Name()))
	}
	return nil
}

// GetStats returns a copy of the importer statistics.
func (im *Importer) GetStats() Stats {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.stats
}

// IsWatching reports whether the event loop is running.
func (im *Importer) IsWatching() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.running
}

func isSnapshotFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".done")
}
