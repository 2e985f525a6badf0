// Package watcher reports batches of file changes below the directories a
// gallery is served from, so connected browsers can be told to reload.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/internal/scanner"
)

// FileWatcher watches directories for changes and hands debounced batches
// of events to its handlers.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	recursive bool
	mutex     sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether changes to path are of interest. All filters
// must accept a path for its events to be delivered.
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of change events.
type ChangeHandler func(events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

func newDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}
}

// NewFileWatcher creates a watcher that batches events arriving within
// debounceDelay of each other. A nil logger discards log output.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &FileWatcher{
		watcher:   watcher,
		debouncer: newDebouncer(debounceDelay),
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		logger:    logger.WithComponent("watcher"),
		done:      make(chan struct{}),
	}, nil
}

// AddFilter adds a file filter
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath watches a single directory or file.
func (fw *FileWatcher) AddPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return fw.watcher.Add(filepath.Clean(path))
}

// AddRecursive watches root and every directory below it. Directories
// created later are picked up as they appear.
func (fw *FileWatcher) AddRecursive(root string) error {
	fw.mutex.Lock()
	fw.recursive = true
	fw.mutex.Unlock()

	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// Start runs the watcher until ctx is cancelled or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.wg.Add(3)
	go func() {
		defer fw.wg.Done()
		fw.debouncer.start(ctx, fw.done)
	}()
	go func() {
		defer fw.wg.Done()
		fw.processEvents(ctx)
	}()
	go func() {
		defer fw.wg.Done()
		fw.watchLoop(ctx)
	}()

	fw.logger.Debug(ctx, "File watcher started", "paths", len(fw.watcher.WatchList()))
	return nil
}

// Stop stops the file watcher, waits for its goroutines and releases the
// underlying watches. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.debouncer.stop()
		err = fw.watcher.Close()
		fw.wg.Wait()
	})
	return err
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	if statErr == nil && info.IsDir() {
		fw.mutex.RLock()
		recursive := fw.recursive
		fw.mutex.RUnlock()
		if recursive && event.Op&fsnotify.Create == fsnotify.Create {
			if err := fw.AddRecursive(event.Name); err != nil {
				fw.logger.Warn(ctx, err, "Cannot watch new directory", "path", event.Name)
			}
		}
		return
	}

	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	changeEvent := ChangeEvent{
		Type: eventType(event.Op),
		Path: event.Name,
	}
	if statErr == nil {
		changeEvent.ModTime = info.ModTime()
		changeEvent.Size = info.Size()
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(ctx, "Dropping change event, queue full", "path", event.Name)
	}
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return EventTypeCreated
	case op&fsnotify.Write == fsnotify.Write:
		return EventTypeModified
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventTypeDeleted
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			fw.logger.Debug(ctx, "Files changed", "count", len(events))
			for _, handler := range handlers {
				if err := handler(events); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler failed")
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case <-done:
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// flush emits the pending events, keeping the latest event per path in the
// order paths were first seen.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	index := make(map[string]int, len(d.pending))
	events := make([]ChangeEvent, 0, len(d.pending))
	for _, event := range d.pending {
		if i, ok := index[event.Path]; ok {
			events[i] = event
			continue
		}
		index[event.Path] = len(events)
		events = append(events, event)
	}

	select {
	case d.output <- events:
	default:
	}

	d.pending = d.pending[:0]
}

// ImageFilter accepts files whose extension is one of types.
func ImageFilter(types []string) FileFilter {
	return func(path string) bool {
		return scanner.MatchesType(path, types)
	}
}

// FilesFilter accepts exactly the given files, such as a page template or
// stylesheet.
func FilesFilter(files ...string) FileFilter {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[filepath.Clean(f)] = true
	}
	return func(path string) bool {
		return set[filepath.Clean(path)]
	}
}

// AnyFilter accepts a path when at least one of filters does.
func AnyFilter(filters ...FileFilter) FileFilter {
	return func(path string) bool {
		for _, f := range filters {
			if f(path) {
				return true
			}
		}
		return false
	}
}

// NoHiddenFilter rejects dot files and anything inside dot directories,
// which covers editor swap files and VCS metadata.
func NoHiddenFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return false
		}
	}
	return true
}
