// Package gittest provides an in-memory git.Service for tests.
package gittest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"stagehand/internal/git"
)

// Operation names used for call counting, error injection and gates.
const (
	OpSnapshot           = "snapshot"
	OpCommitHistory      = "commit-history"
	OpCommitFiles        = "commit-files"
	OpCommitFileVersions = "commit-file-versions"
	OpFileVersions       = "file-versions"
	OpStageFile          = "stage-file"
	OpUnstageFile        = "unstage-file"
	OpDiscardFile        = "discard-file"
	OpDiscardFiles       = "discard-files"
	OpDiscardAll         = "discard-all"
	OpStageAll           = "stage-all"
	OpUnstageAll         = "unstage-all"
	OpCommit             = "commit"
)

// Gate pauses the next call of one operation until Release.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered is closed once the held call has captured its result.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// Fake keeps one snapshot and history per repository and applies writes to
// them the way git would.
type Fake struct {
	mu        sync.Mutex
	snapshots map[string]git.Snapshot
	histories map[string][]git.HistoryCommit
	files     map[string][]git.FileItem
	versions  map[string]git.FileVersions
	errs      map[string]error
	calls     map[string]int
	gates     map[string]*Gate
	discarded []git.PathChange
	nextID    int
}

var _ git.Service = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		snapshots: map[string]git.Snapshot{},
		histories: map[string][]git.HistoryCommit{},
		files:     map[string][]git.FileItem{},
		versions:  map[string]git.FileVersions{},
		errs:      map[string]error{},
		calls:     map[string]int{},
		gates:     map[string]*Gate{},
	}
}

func (f *Fake) SetSnapshot(repo string, snap git.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if snap.RepoRoot == "" {
		snap.RepoRoot = repo
	}
	f.snapshots[repo] = snap
}

func (f *Fake) SetHistory(repo string, commits []git.HistoryCommit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories[repo] = slices.Clone(commits)
}

func (f *Fake) SetCommitFiles(repo, commitID string, files []git.FileItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[repo+"@"+commitID] = slices.Clone(files)
}

// SetVersions registers the content pair returned for key, built with
// WorkingKey or CommitKey.
func (f *Fake) SetVersions(key string, v git.FileVersions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[key] = v
}

func WorkingKey(repo string, bucket git.Bucket, path string) string {
	return repo + "|" + string(bucket) + "|" + path
}

func CommitKey(repo, commitID, path string) string {
	return repo + "@" + commitID + "|" + path
}

// Fail makes every later call of op return err until Fail(op, nil).
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// Hold installs a gate for the next call of op.
func (f *Fake) Hold(op string) *Gate {
	g := &Gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[op] = g
	f.mu.Unlock()
	return g
}

func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Discarded lists every path a discard call was applied to, in order.
func (f *Fake) Discarded() []git.PathChange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.discarded)
}

func (f *Fake) CurrentSnapshot(repo string) git.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneSnapshot(f.snapshots[repo])
}

// begin counts the call and returns the injected error and gate, if any.
func (f *Fake) begin(op string) (*Gate, error) {
	f.calls[op]++
	g := f.gates[op]
	delete(f.gates, op)
	return g, f.errs[op]
}

func wait(ctx context.Context, g *Gate) error {
	if g == nil {
		return nil
	}
	close(g.entered)
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fake) Snapshot(ctx context.Context, repoPath string) (git.Snapshot, error) {
	f.mu.Lock()
	g, err := f.begin(OpSnapshot)
	snap, ok := f.snapshots[repoPath]
	snap = cloneSnapshot(snap)
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return git.Snapshot{}, werr
	}
	if err != nil {
		return git.Snapshot{}, err
	}
	if !ok {
		return git.Snapshot{}, &git.CommandError{Op: "get snapshot", Message: "not a git repository: " + repoPath}
	}
	return snap, nil
}

func (f *Fake) CommitHistory(ctx context.Context, repoPath string, limit int) ([]git.HistoryCommit, error) {
	f.mu.Lock()
	g, err := f.begin(OpCommitHistory)
	commits := slices.Clone(f.histories[repoPath])
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	if commits == nil {
		commits = []git.HistoryCommit{}
	}
	return commits, nil
}

func (f *Fake) CommitFiles(ctx context.Context, repoPath, commitID string) ([]git.FileItem, error) {
	f.mu.Lock()
	g, err := f.begin(OpCommitFiles)
	files := slices.Clone(f.files[repoPath+"@"+commitID])
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []git.FileItem{}
	}
	return files, nil
}

func (f *Fake) CommitFileVersions(ctx context.Context, repoPath, commitID, relPath, previousPath string) (git.FileVersions, error) {
	f.mu.Lock()
	g, err := f.begin(OpCommitFileVersions)
	v := f.versions[CommitKey(repoPath, commitID, relPath)]
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return git.FileVersions{}, werr
	}
	return v, err
}

func (f *Fake) FileVersions(ctx context.Context, repoPath string, bucket git.Bucket, relPath string) (git.FileVersions, error) {
	f.mu.Lock()
	g, err := f.begin(OpFileVersions)
	v := f.versions[WorkingKey(repoPath, bucket, relPath)]
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return git.FileVersions{}, werr
	}
	return v, err
}

// write runs apply under the lock unless an error is injected.
func (f *Fake) write(ctx context.Context, op string, apply func()) error {
	f.mu.Lock()
	g, err := f.begin(op)
	f.mu.Unlock()

	if werr := wait(ctx, g); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	apply()
	f.mu.Unlock()
	return nil
}

func (f *Fake) StageFile(ctx context.Context, repoPath, relPath string) error {
	return f.write(ctx, OpStageFile, func() {
		snap := f.snapshots[repoPath]
		var item git.FileItem
		var found bool
		snap.Unstaged, item, found = remove(snap.Unstaged, relPath)
		if !found {
			snap.Untracked, item, found = remove(snap.Untracked, relPath)
			item.Status = git.StatusAdded
		}
		if found && !containsPath(snap.Staged, relPath) {
			snap.Staged = sortedInsert(snap.Staged, item)
		}
		f.snapshots[repoPath] = snap
	})
}

func (f *Fake) UnstageFile(ctx context.Context, repoPath, relPath string) error {
	return f.write(ctx, OpUnstageFile, func() {
		snap := f.snapshots[repoPath]
		var item git.FileItem
		var found bool
		snap.Staged, item, found = remove(snap.Staged, relPath)
		if found {
			if item.Status == git.StatusAdded {
				item.Status = git.StatusUntracked
				snap.Untracked = sortedInsert(snap.Untracked, item)
			} else if !containsPath(snap.Unstaged, relPath) {
				snap.Unstaged = sortedInsert(snap.Unstaged, item)
			}
		}
		f.snapshots[repoPath] = snap
	})
}

func (f *Fake) DiscardFile(ctx context.Context, repoPath, relPath string, bucket git.Bucket) error {
	return f.write(ctx, OpDiscardFile, func() {
		f.discardLocked(repoPath, git.PathChange{RelPath: relPath, Bucket: bucket})
	})
}

func (f *Fake) DiscardFiles(ctx context.Context, repoPath string, files []git.PathChange) error {
	return f.write(ctx, OpDiscardFiles, func() {
		for _, pc := range files {
			f.discardLocked(repoPath, pc)
		}
	})
}

func (f *Fake) discardLocked(repoPath string, pc git.PathChange) {
	f.discarded = append(f.discarded, pc)
	snap := f.snapshots[repoPath]
	switch pc.Bucket {
	case git.BucketUnstaged:
		snap.Unstaged, _, _ = remove(snap.Unstaged, pc.RelPath)
	case git.BucketUntracked:
		snap.Untracked, _, _ = remove(snap.Untracked, pc.RelPath)
	case git.BucketStaged:
		snap.Staged, _, _ = remove(snap.Staged, pc.RelPath)
		snap.Unstaged, _, _ = remove(snap.Unstaged, pc.RelPath)
	}
	f.snapshots[repoPath] = snap
}

func (f *Fake) DiscardAll(ctx context.Context, repoPath string) error {
	return f.write(ctx, OpDiscardAll, func() {
		snap := f.snapshots[repoPath]
		snap.Unstaged, snap.Staged, snap.Untracked = []git.FileItem{}, []git.FileItem{}, []git.FileItem{}
		f.snapshots[repoPath] = snap
	})
}

func (f *Fake) StageAll(ctx context.Context, repoPath string) error {
	return f.write(ctx, OpStageAll, func() {
		snap := f.snapshots[repoPath]
		for _, item := range snap.Unstaged {
			if !containsPath(snap.Staged, item.Path) {
				snap.Staged = sortedInsert(snap.Staged, item)
			}
		}
		for _, item := range snap.Untracked {
			item.Status = git.StatusAdded
			snap.Staged = sortedInsert(snap.Staged, item)
		}
		snap.Unstaged, snap.Untracked = []git.FileItem{}, []git.FileItem{}
		f.snapshots[repoPath] = snap
	})
}

func (f *Fake) UnstageAll(ctx context.Context, repoPath string) error {
	return f.write(ctx, OpUnstageAll, func() {
		snap := f.snapshots[repoPath]
		for _, item := range snap.Staged {
			if item.Status == git.StatusAdded {
				item.Status = git.StatusUntracked
				snap.Untracked = sortedInsert(snap.Untracked, item)
				continue
			}
			if !containsPath(snap.Unstaged, item.Path) {
				snap.Unstaged = sortedInsert(snap.Unstaged, item)
			}
		}
		snap.Staged = []git.FileItem{}
		f.snapshots[repoPath] = snap
	})
}

func (f *Fake) CommitStaged(ctx context.Context, repoPath, message string) (string, error) {
	var id string
	err := f.write(ctx, OpCommit, func() {
		f.nextID++
		id = fmt.Sprintf("%040x", f.nextID)
		snap := f.snapshots[repoPath]
		f.files[repoPath+"@"+id] = slices.Clone(snap.Staged)
		snap.Staged = []git.FileItem{}
		f.snapshots[repoPath] = snap
		commit := git.HistoryCommit{CommitID: id, ShortID: id[:7], Summary: message, Author: "Test User", RelativeTime: "now"}
		f.histories[repoPath] = append([]git.HistoryCommit{commit}, f.histories[repoPath]...)
	})
	return id, err
}

func remove(items []git.FileItem, path string) ([]git.FileItem, git.FileItem, bool) {
	for i, item := range items {
		if item.Path == path {
			out := append(slices.Clone(items[:i]), items[i+1:]...)
			return out, item, true
		}
	}
	return items, git.FileItem{}, false
}

func containsPath(items []git.FileItem, path string) bool {
	return slices.ContainsFunc(items, func(it git.FileItem) bool { return it.Path == path })
}

func sortedInsert(items []git.FileItem, item git.FileItem) []git.FileItem {
	i, _ := slices.BinarySearchFunc(items, item.Path, func(it git.FileItem, p string) int {
		switch {
		case it.Path < p:
			return -1
		case it.Path > p:
			return 1
		}
		return 0
	})
	return slices.Insert(slices.Clone(items), i, item)
}

func cloneSnapshot(s git.Snapshot) git.Snapshot {
	s.Unstaged = nonNil(slices.Clone(s.Unstaged))
	s.Staged = nonNil(slices.Clone(s.Staged))
	s.Untracked = nonNil(slices.Clone(s.Untracked))
	return s
}

func nonNil(items []git.FileItem) []git.FileItem {
	if items == nil {
		return []git.FileItem{}
	}
	return items
}
