package runner

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the scanned roots and re-runs the pipeline for files that
// change, emitting a fresh patch per change. Events are debounced so editors
// that write in bursts trigger one pass.
type Watcher struct {
	runner       *Runner
	roots        []string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a watcher over the given roots.
func NewWatcher(r *Runner, roots []string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		runner:       r,
		roots:        roots,
		watcher:      watcher,
		debounceTime: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	for _, root := range roots {
		if err := w.addDirectoriesRecursively(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the event loop with debouncing.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounce *time.Timer
	flushCh := make(chan struct{}, 1)
	changed := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			// New directories need their own watch before anything inside
			// them produces events.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("warning: watching %s: %v", event.Name, err)
					}
					continue
				}
			}

			changed[event.Name] = true
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounceTime, func() {
				select {
				case flushCh <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("warning: watcher error: %v", err)

		case <-flushCh:
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			changed = map[string]bool{}
			sort.Strings(paths)

			for _, p := range paths {
				info, err := os.Stat(p)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				if err := w.runner.ProcessPath(p); err != nil {
					log.Printf("warning: processing %s: %v", p, err)
				}
			}
		}
	}
}

// shouldProcessEvent filters events down to content-changing operations on
// non-ignored paths.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return !w.ignored(event.Name)
}

// ignored resolves the path against its root and applies the scanner's
// ignore patterns.
func (w *Watcher) ignored(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || filepath.IsAbs(rel) ||
			(len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)) {
			continue
		}
		return w.runner.Ignored(rel)
	}
	return false
}

// addDirectoriesRecursively registers dir and every non-ignored directory
// below it.
func (w *Watcher) addDirectoriesRecursively(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if p != dir && w.ignored(p) {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}
