package engine

import (
	"context"

	"go.uber.org/zap"

	"stagehand/internal/cache"
	"stagehand/internal/git"
	"stagehand/internal/mutation"
	"stagehand/internal/selection"
)

// stream is one logical query whose responses are ordered by sequence
// number; only the latest issued request may apply its result.
type stream int

const (
	streamSnapshot stream = iota
	streamHistory
	streamCommitFiles
	streamDiff
	numStreams
)

var streamNames = [numStreams]string{"snapshot", "history", "commit-files", "diff"}

func (s stream) String() string { return streamNames[s] }

// readError remembers which stream put its failure in the error slot.
type readError struct {
	stream stream
	msg    string
	set    bool
}

type ticket struct {
	stream stream
	seq    uint64
	repo   string
	commit string
}

func (c *Controller) issueLocked(s stream) ticket {
	c.seq[s]++
	return ticket{
		stream: s,
		seq:    c.seq[s],
		repo:   c.state.ActiveRepo(),
		commit: c.state.HistoryCommitID(),
	}
}

// currentLocked reports whether t may still apply its result.
func (c *Controller) currentLocked(t ticket) bool {
	if c.seq[t.stream] != t.seq || t.repo == "" || c.state.ActiveRepo() != t.repo {
		c.log.Debug("discarding superseded response",
			zap.Stringer("stream", t.stream), zap.Uint64("seq", t.seq), zap.String("repo", t.repo))
		return false
	}
	return true
}

// failLocked stores a read failure in the error slot.
func (c *Controller) failLocked(t ticket, err error) {
	c.log.Warn("query failed", zap.Stringer("stream", t.stream), zap.String("repo", t.repo), zap.Error(err))
	msg := mutation.Message(err)
	c.state.SetError(msg)
	c.readErr = readError{stream: t.stream, msg: msg, set: true}
}

// succeedLocked clears the error slot when it still holds a failure of the
// same stream. Errors from writes or other streams stay.
func (c *Controller) succeedLocked(t ticket) {
	if !c.readErr.set || c.readErr.stream != t.stream {
		return
	}
	if c.state.Error() == c.readErr.msg {
		c.state.ClearError()
	}
	c.readErr = readError{}
}

// Sync brings the active view up to date: the snapshot in changes mode,
// the history and the selected commit's files in history mode, and then
// the diff of the active file. Cached data is reused when fresh.
func (c *Controller) Sync(ctx context.Context) error {
	c.mu.Lock()
	mode := c.state.ViewMode()
	c.mu.Unlock()

	var err error
	if mode == selection.ModeHistory {
		err = c.loadHistory(ctx, false)
		if err == nil {
			err = c.loadCommitFiles(ctx, false)
		}
	} else {
		err = c.loadSnapshot(ctx, false)
	}
	if err != nil {
		return err
	}
	return c.syncDiff(ctx)
}

// Refresh refetches everything the active view shows.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	repo := c.state.ActiveRepo()
	c.mu.Unlock()
	if repo == "" {
		return ErrNoRepository
	}
	c.cache.Invalidate(cache.TagRepo(repo))
	return c.Sync(ctx)
}

// RefreshSnapshot refetches the working-tree snapshot.
func (c *Controller) RefreshSnapshot(ctx context.Context) error {
	return c.loadSnapshot(ctx, true)
}

// RefreshHistory refetches the commit list.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	return c.loadHistory(ctx, true)
}

// RefreshCommitFiles refetches the file list of the selected commit.
func (c *Controller) RefreshCommitFiles(ctx context.Context) error {
	return c.loadCommitFiles(ctx, true)
}

// WorktreeChanged is called when the files of root changed on disk. The
// snapshot and working-tree contents are invalidated, and refetched when
// root is active.
func (c *Controller) WorktreeChanged(ctx context.Context, root string) error {
	c.cache.Invalidate(cache.TagSnapshot(root), cache.TagWorktree(root))
	c.mu.Lock()
	active := c.state.ActiveRepo() == root
	mode := c.state.ViewMode()
	c.mu.Unlock()
	if !active || mode != selection.ModeChanges {
		return nil
	}
	if err := c.loadSnapshot(ctx, false); err != nil {
		return err
	}
	return c.LoadDiff(ctx)
}

func (c *Controller) loadSnapshot(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.state.ActiveRepo() == "" {
		c.mu.Unlock()
		return ErrNoRepository
	}
	t := c.issueLocked(streamSnapshot)
	c.mu.Unlock()

	if force {
		c.cache.Invalidate(cache.TagSnapshot(t.repo))
	}
	snap, err := c.cache.Snapshot(ctx, t.repo)

	c.mu.Lock()
	if !c.currentLocked(t) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(t, err)
		c.mu.Unlock()
		c.changed()
		return err
	}
	c.succeedLocked(t)
	c.view.snapshot = &snap
	c.state.ReconcileSnapshot(c.view.snapshot)
	c.mu.Unlock()
	c.changed()
	return nil
}

func (c *Controller) loadHistory(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.state.ActiveRepo() == "" {
		c.mu.Unlock()
		return ErrNoRepository
	}
	t := c.issueLocked(streamHistory)
	c.mu.Unlock()

	if force {
		c.cache.Invalidate(cache.TagHistory(t.repo))
	}
	commits, err := c.cache.CommitHistory(ctx, t.repo)

	c.mu.Lock()
	if !c.currentLocked(t) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(t, err)
		c.mu.Unlock()
		c.changed()
		return err
	}
	c.succeedLocked(t)
	c.view.commits = commits
	c.view.commitsLoaded = true
	c.reconcileLocked()
	c.mu.Unlock()
	c.changed()
	return nil
}

// loadCommitFiles fetches the files of the selected commit. With no commit
// selected there is nothing to do.
func (c *Controller) loadCommitFiles(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.state.ActiveRepo() == "" {
		c.mu.Unlock()
		return ErrNoRepository
	}
	t := c.issueLocked(streamCommitFiles)
	c.mu.Unlock()
	if t.commit == "" {
		return nil
	}

	if force {
		c.cache.Invalidate(cache.TagCommit(t.repo, t.commit))
	}
	files, err := c.cache.CommitFiles(ctx, t.repo, t.commit)

	c.mu.Lock()
	if !c.currentLocked(t) || c.state.HistoryCommitID() != t.commit {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(t, err)
		c.mu.Unlock()
		c.changed()
		return err
	}
	c.succeedLocked(t)
	c.view.commitFilesFor = t.commit
	c.view.commitFiles = files
	c.state.ReconcileCommitFiles(t.commit, files)
	c.mu.Unlock()
	c.changed()
	return nil
}

// NeedsDiff reports whether a file is selected whose contents are not
// loaded.
func (c *Controller) NeedsDiff() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActivePath() != "" && c.state.Diff() == nil
}

func (c *Controller) syncDiff(ctx context.Context) error {
	if !c.NeedsDiff() {
		return nil
	}
	return c.LoadDiff(ctx)
}

// diffTarget is what the active selection points at.
type diffTarget struct {
	mode     selection.ViewMode
	bucket   git.Bucket
	path     string
	previous string
	commit   string
}

func (c *Controller) diffTargetLocked() (diffTarget, bool) {
	d := diffTarget{mode: c.state.ViewMode(), path: c.state.ActivePath()}
	if d.path == "" {
		return d, false
	}
	if d.mode == selection.ModeHistory {
		d.commit = c.state.HistoryCommitID()
		if d.commit == "" {
			return d, false
		}
		for _, f := range c.view.commitFiles {
			if f.Path == d.path {
				d.previous = f.PreviousPath
			}
		}
		return d, true
	}
	d.bucket = c.state.ActiveBucket()
	return d, true
}

// LoadDiff fetches the old and new contents of the active file. The result
// is dropped if the selection moved while it was loading.
func (c *Controller) LoadDiff(ctx context.Context) error {
	c.mu.Lock()
	if c.state.ActiveRepo() == "" {
		c.mu.Unlock()
		return ErrNoRepository
	}
	target, ok := c.diffTargetLocked()
	if !ok {
		c.mu.Unlock()
		return nil
	}
	t := c.issueLocked(streamDiff)
	c.mu.Unlock()

	var v git.FileVersions
	var err error
	if target.mode == selection.ModeHistory {
		v, err = c.cache.CommitFileVersions(ctx, t.repo, target.commit, target.path, target.previous)
	} else {
		v, err = c.cache.FileVersions(ctx, t.repo, target.bucket, target.path)
	}

	c.mu.Lock()
	if !c.currentLocked(t) {
		c.mu.Unlock()
		return nil
	}
	if now, ok := c.diffTargetLocked(); !ok || now != target {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.failLocked(t, err)
		c.mu.Unlock()
		c.changed()
		return err
	}
	c.succeedLocked(t)
	c.state.SetDiff(&v)
	c.mu.Unlock()
	c.changed()
	return nil
}
