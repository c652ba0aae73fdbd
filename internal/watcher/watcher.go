// Package watcher reports corpus file changes made after ingestion. The
// in-memory store is never rebuilt; changes only mark it stale.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Op names the kind of change seen on a corpus file.
type Op string

const (
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Change is one debounced corpus file event.
type Change struct {
	Path string    `json:"path"`
	Op   Op        `json:"op"`
	At   time.Time `json:"at"`
}

// Watcher watches corpus directories and calls onChange once per file after
// events for that file settle.
type Watcher struct {
	roots      []string
	extensions []string
	recursive  bool
	onChange   func(Change)
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending map[string]*time.Timer
	done    chan struct{}
	started bool
	stop    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = utils.LoggerOrNop(l) }
}

// WithDebounce overrides the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over roots. extensions filters which files
// count (empty = all).
func NewWatcher(roots, extensions []string, recursive bool, onChange func(Change), opts ...Option) *Watcher {
	w := &Watcher{
		roots:      roots,
		extensions: extensions,
		recursive:  recursive,
		onChange:   onChange,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Roots must already exist.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := w.addTree(fw, root); err != nil {
			_ = fw.Close()
			return err
		}
	}
	w.watcher = fw
	w.started = true
	w.logger.Debug("watcher started", zap.Strings("roots", w.roots), zap.Bool("recursive", w.recursive))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and drops pending notifications.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	if !w.recursive {
		return fw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return fw.Add(path)
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.recursive {
				w.mu.Lock()
				if w.watcher != nil {
					_ = w.addTree(w.watcher, ev.Name)
				}
				w.mu.Unlock()
			}
			return
		}
		if matchExtension(ev.Name, w.extensions) {
			w.schedule(Change{Path: ev.Name, Op: OpWrite})
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if matchExtension(ev.Name, w.extensions) {
			w.schedule(Change{Path: ev.Name, Op: OpRemove})
		}
	}
}

// schedule delays delivery so a burst of writes to one file reports once.
// The latest op for a path wins.
func (w *Watcher) schedule(c Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[c.Path]; ok {
		t.Stop()
	}
	w.pending[c.Path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, c.Path)
		w.mu.Unlock()
		select {
		case <-w.done:
			return
		default:
		}
		c.At = time.Now()
		if w.onChange != nil {
			w.onChange(c)
		}
	})
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
