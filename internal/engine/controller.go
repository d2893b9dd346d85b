// Package engine is the application controller. A Controller owns the
// selection state, the cache, the mutation runner and the comment store,
// and is the only way a front end changes any of them.
//
// Every method is safe to call from any goroutine. State transitions run
// to completion under one lock; blocking git calls happen outside it and
// their results are applied only if they are still the newest for their
// stream and the repository they were issued for is still active.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	"stagehand/internal/cache"
	"stagehand/internal/clipboard"
	"stagehand/internal/comments"
	"stagehand/internal/git"
	"stagehand/internal/mutation"
	"stagehand/internal/navigation"
	"stagehand/internal/selection"
)

var (
	ErrNoRepository  = errors.New("no active repository")
	ErrNoFile        = errors.New("no file selected")
	ErrNoComments    = errors.New("no comments to copy")
	ErrEmptyMessage  = errors.New("commit message is empty")
	ErrNothingStaged = errors.New("nothing staged to commit")
	ErrUnknownRepo   = errors.New("repository is not open")
)

type Options struct {
	Cache     cache.Options
	Clipboard clipboard.Writer
	// Comments persists the comment store when set.
	Comments  *comments.File
	DiffStyle selection.DiffStyle
	Logger    *zap.Logger
	// ResolveRoot maps a path inside a repository to its root. Defaults
	// to git.DiscoverRepoRoot.
	ResolveRoot func(ctx context.Context, path string) (string, error)
	// OnChange runs after any state change, outside the lock.
	OnChange func()
}

// view holds the data last applied for the active repository.
type view struct {
	snapshot       *git.Snapshot
	commits        []git.HistoryCommit
	commitsLoaded  bool
	commitFilesFor string
	commitFiles    []git.FileItem
}

type Controller struct {
	mu      sync.Mutex
	state   *selection.State
	view    view
	seq     [numStreams]uint64
	readErr readError

	cache       *cache.Cache
	runner      *mutation.Runner
	comments    *comments.Store
	commentFile *comments.File
	clip        clipboard.Writer
	resolveRoot func(ctx context.Context, path string) (string, error)
	onChange    func()
	log         *zap.Logger
}

func New(svc git.Service, opts Options) (*Controller, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts.Cache.Logger = log
	c, err := cache.New(svc, opts.Cache)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	ctl := &Controller{
		state:       selection.New(),
		cache:       c,
		comments:    comments.NewStore(),
		commentFile: opts.Comments,
		clip:        opts.Clipboard,
		resolveRoot: opts.ResolveRoot,
		onChange:    opts.OnChange,
		log:         log.Named("engine"),
	}
	if ctl.resolveRoot == nil {
		ctl.resolveRoot = git.DiscoverRepoRoot
	}
	if ctl.clip == nil {
		ctl.clip = clipboard.NewSystem()
	}
	if opts.DiffStyle != "" {
		ctl.state.SetDiffStyle(opts.DiffStyle)
	}
	ctl.runner = mutation.NewRunner(&ctl.mu, ctl.state, log)

	if ctl.commentFile != nil {
		loaded, err := ctl.commentFile.Load()
		if err != nil {
			return nil, fmt.Errorf("load comments: %w", err)
		}
		ctl.comments.Replace(loaded)
	}
	return ctl, nil
}

// SetOnChange replaces the change callback.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// update runs fn under the lock and then notifies.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.changed()
}

// OpenRepo adds the repository containing path and makes it active. It
// returns the repository root.
func (c *Controller) OpenRepo(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	root, err := c.resolveRoot(ctx, abs)
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", path, err)
	}
	c.update(func() {
		c.state.AddRepo(root)
		c.activateLocked(root)
	})
	c.log.Info("repository opened", zap.String("repo", root))
	return root, nil
}

// CloseRepo drops the repository, its cached data and its comments.
func (c *Controller) CloseRepo(root string) error {
	var err error
	c.update(func() {
		if !slices.Contains(c.state.Repos(), root) {
			err = ErrUnknownRepo
			return
		}
		wasActive := c.state.ActiveRepo() == root
		c.state.RemoveRepo(root)
		if n := c.comments.RemoveRepo(root); n > 0 {
			c.persistLocked()
		}
		c.cache.ForgetRepo(root)
		if wasActive {
			c.loadViewLocked()
		}
	})
	if err == nil {
		c.log.Info("repository closed", zap.String("repo", root))
	}
	return err
}

// SetActiveRepo switches to an open repository.
func (c *Controller) SetActiveRepo(root string) error {
	var err error
	c.update(func() {
		if !slices.Contains(c.state.Repos(), root) {
			err = ErrUnknownRepo
			return
		}
		c.activateLocked(root)
	})
	return err
}

func (c *Controller) activateLocked(root string) {
	if c.state.ActiveRepo() != root {
		c.state.SetActiveRepo(root)
	} else if c.view.snapshot != nil || c.view.commitsLoaded {
		return
	}
	c.loadViewLocked()
}

// loadViewLocked seeds the view from whatever the cache already holds for
// the active repository and reconciles against it.
func (c *Controller) loadViewLocked() {
	c.view = view{}
	repo := c.state.ActiveRepo()
	if repo == "" {
		return
	}
	if snap, ok := c.cache.CachedSnapshot(repo); ok {
		c.view.snapshot = &snap
	}
	if commits, ok := c.cache.CachedHistory(repo); ok {
		c.view.commits = commits
		c.view.commitsLoaded = true
	}
	c.reconcileLocked()
}

// reconcileLocked runs every reconcile pipeline against the applied data.
// Each is a no-op outside its own view mode.
func (c *Controller) reconcileLocked() {
	c.state.ReconcileSnapshot(c.view.snapshot)
	if c.view.commitsLoaded {
		c.state.ReconcileCommits(c.view.commits)
	}
	c.seedCommitFilesLocked()
	if id := c.state.HistoryCommitID(); id != "" && c.view.commitFilesFor == id {
		c.state.ReconcileCommitFiles(id, c.view.commitFiles)
	}
}

func (c *Controller) seedCommitFilesLocked() {
	id := c.state.HistoryCommitID()
	if id == c.view.commitFilesFor {
		return
	}
	c.view.commitFilesFor = ""
	c.view.commitFiles = nil
	if id == "" {
		return
	}
	if files, ok := c.cache.CachedCommitFiles(c.state.ActiveRepo(), id); ok {
		c.view.commitFilesFor = id
		c.view.commitFiles = files
	}
}

// State returns a copy of the selection state.
func (c *Controller) State() selection.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.View()
}

// Snapshot returns the applied working-tree snapshot of the active
// repository.
func (c *Controller) Snapshot() (git.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.snapshot == nil {
		return git.Snapshot{}, false
	}
	return *c.view.snapshot, true
}

// CachedSnapshot peeks at the cache for any open repository.
func (c *Controller) CachedSnapshot(root string) (git.Snapshot, bool) {
	return c.cache.CachedSnapshot(root)
}

// VisibleFileRows lists the changes rows in display order.
func (c *Controller) VisibleFileRows() []navigation.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileRowsLocked()
}

func (c *Controller) fileRowsLocked() []navigation.Row {
	if c.view.snapshot == nil {
		return nil
	}
	return navigation.FileRows(*c.view.snapshot, c.state.StagedCollapsed(), c.state.ChangesCollapsed())
}

// VisibleCommits lists the history after the filter.
func (c *Controller) VisibleCommits() []git.HistoryCommit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(navigation.FilterCommits(c.view.commits, c.state.HistoryFilter()))
}

// VisibleCommitFiles lists the files of the selected commit.
func (c *Controller) VisibleCommitFiles() []git.FileItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.commitFilesFor != c.state.HistoryCommitID() {
		return nil
	}
	return slices.Clone(c.view.commitFiles)
}

// HistoryLoaded reports whether a commit list has been applied.
func (c *Controller) HistoryLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.commitsLoaded
}

func (c *Controller) DismissError() {
	c.update(c.state.ClearError)
}
