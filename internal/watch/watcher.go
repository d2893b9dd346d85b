// Package watch reports working-tree changes of a repository, debounced so
// a burst of writes produces one notification.
package watch

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
	"go.uber.org/zap"
)

// Git metadata files whose change means the status may have changed.
var gitTriggers = map[string]bool{
	"index":      true,
	"HEAD":       true,
	"ORIG_HEAD":  true,
	"MERGE_HEAD": true,
}

type Watcher struct {
	root       string
	gitDir     string
	debounce   time.Duration
	onChange   func(root string)
	watcher    *fsnotify.Watcher
	ignoreDirs map[string]bool
	logger     *zap.Logger
	closeOnce  sync.Once
}

// New watches root and every directory below it except ignored ones.
// onChange runs on the Run goroutine after debounce of quiet.
func New(root string, debounce time.Duration, onChange func(root string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		ignoreDirs: map[string]bool{
			".git":         true,
			"node_modules": true,
		},
		logger: logger.Named("watch").With(zap.String("repo", root)),
	}

	if err := w.addTree(w.root); err != nil {
		fw.Close()
		return nil, err
	}
	gitDir := filepath.Join(w.root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		if err := fw.Add(gitDir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("adding git directory to watcher: %w", err)
		}
		w.gitDir = gitDir
	}
	return w, nil
}

// AddGitDir watches a git directory that does not sit at root/.git, as in
// linked worktrees.
func (w *Watcher) AddGitDir(dir string) error {
	dir = filepath.Clean(dir)
	if dir == w.gitDir {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("adding git directory to watcher: %w", err)
	}
	w.gitDir = dir
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish while walking.
			if path != dir && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// Run delivers change notifications until ctx is done, then closes the
// watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			w.logger.Debug("working tree changed")
			w.onChange(w.root)
		}
	}
}

// handle reports whether event should trigger a notification. New
// directories are added to the watch list.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.gitDir != "" && filepath.Dir(event.Name) == w.gitDir {
		return gitTriggers[filepath.Base(event.Name)]
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || w.ShouldIgnore(rel) {
		return false
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("adding new directory to watcher", zap.Error(err))
			}
		}
	}
	return true
}

// ShouldIgnore reports whether a root-relative path sits in an ignored
// directory.
func (w *Watcher) ShouldIgnore(rel string) bool {
	if rel == "" || rel == "." || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.watcher.Close() })
	return err
}
