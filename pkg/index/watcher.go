package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce batches bursts of filesystem events into one re-index.
const defaultDebounce = 500 * time.Millisecond

// Watcher watches a corpus directory and re-indexes it on change.
//
// Every change triggers a full rebuild (the indexer runs with PreDelete
// forced on), so the store always mirrors the directory contents. That
// keeps the write path simple at the cost of re-embedding the corpus; fine
// for the corpus sizes this engine targets.
type Watcher struct {
	indexer  *Indexer
	root     string
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher that re-indexes root via the given indexer.
func NewWatcher(indexer *Indexer, root string, logger *zap.Logger) *Watcher {
	return &Watcher{
		indexer:  indexer,
		root:     root,
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// Run watches until the context is cancelled. The initial index happens
// before the first event; callers don't need a separate bootstrap pass.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.reindex(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addDirs(watcher); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("corpus change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)

			// New directories must be watched too.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if err := w.reindex(ctx); err != nil {
				w.logger.Error("re-index failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// addDirs registers root and every non-hidden subdirectory.
func (w *Watcher) addDirs(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// relevant filters events down to loadable files and directory changes.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	// Directory events carry no extension; let them through so new
	// subtrees trigger a rebuild.
	return ext == "" || loadableExts[ext]
}

// reindex rebuilds the store from the directory contents.
func (w *Watcher) reindex(ctx context.Context) error {
	docs, err := LoadDir(w.root)
	if err != nil {
		return err
	}

	rebuild := New(w.indexer.store, w.indexer.embedder, Config{
		Policy:    w.indexer.config.Policy,
		PreDelete: true,
	}, w.logger)

	_, err = rebuild.Index(ctx, docs)
	return err
}
