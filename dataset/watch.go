package dataset

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the exports through a Loader whenever one of the files
// changes on disk. Because the Loader is content-addressed, touching a file
// without changing its bytes does not produce a new Datasets.
type Watcher struct {
	loader   *Loader
	paths    Paths
	onLoad   func(*Datasets)
	Debounce time.Duration
}

// NewWatcher creates a watcher; onLoad receives every newly loaded bundle.
func NewWatcher(loader *Loader, paths Paths, onLoad func(*Datasets)) *Watcher {
	return &Watcher{
		loader:   loader,
		paths:    paths,
		onLoad:   onLoad,
		Debounce: DefaultDebounce,
	}
}

// Run watches until ctx is cancelled. The directories holding the exports
// are watched rather than the files, so atomic rename-on-save is seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	targets := make(map[string]bool, 3)
	dirs := make(map[string]bool, 3)
	for _, p := range w.paths.List() {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	var (
		current *Datasets
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Printf("👀 pulse: source change detected, reloading")
			data, err := w.loader.LoadPaths(w.paths)
			if err != nil {
				log.Printf("⚠️ pulse: reload failed, keeping previous data: %v", err)
				continue
			}
			if data == current {
				continue
			}
			current = data
			if w.onLoad != nil {
				w.onLoad(data)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("⚠️ pulse: watcher error: %v", err)
		}
	}
}
