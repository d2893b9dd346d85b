package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"stagehand/internal/git"
	"stagehand/internal/mutation"
	"stagehand/internal/navigation"
	"stagehand/internal/selection"
)

func (c *Controller) activeRepo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ActiveRepo()
}

// run executes one write for repo and refreshes what it invalidated. A
// refresh failure lands in the error slot; the write itself succeeded.
func (c *Controller) run(ctx context.Context, repo string, a mutation.Action, history bool) error {
	err := c.runner.Run(ctx, a)
	c.changed()
	if err != nil {
		return err
	}
	if c.activeRepo() != repo {
		return nil
	}
	if rerr := c.loadSnapshot(ctx, false); rerr != nil {
		c.log.Warn("refresh after write failed", zap.String("action", a.ID), zap.Error(rerr))
	}
	if history {
		if rerr := c.loadHistory(ctx, false); rerr != nil {
			c.log.Warn("history refresh after write failed", zap.String("action", a.ID), zap.Error(rerr))
		}
	}
	if rerr := c.syncDiff(ctx); rerr != nil {
		c.log.Warn("diff refresh after write failed", zap.String("action", a.ID), zap.Error(rerr))
	}
	return nil
}

// StageFile stages one path. When it is the active file the selection
// first moves to its neighbour in the changed list so the diff pane does
// not go blank while the write runs.
func (c *Controller) StageFile(ctx context.Context, path string) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.StageFileAction(path),
		Prepare: func() {
			if c.state.ActiveRepo() != repo || c.state.ViewMode() != selection.ModeChanges ||
				c.state.ActivePath() != path || c.view.snapshot == nil {
				return
			}
			next, listed := mutation.PredictAfterStage(navigation.ChangedRows(*c.view.snapshot), path)
			switch {
			case !listed:
			case next != nil:
				c.state.SelectFile(next.File())
			default:
				c.state.ClearFileSelection()
			}
		},
		Do: func(ctx context.Context) error { return c.cache.StageFile(ctx, repo, path) },
	}, false)
}

func (c *Controller) UnstageFile(ctx context.Context, path string) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.UnstageFileAction(path),
		Do: func(ctx context.Context) error { return c.cache.UnstageFile(ctx, repo, path) },
	}, false)
}

func (c *Controller) DiscardFile(ctx context.Context, f selection.SelectedFile) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.DiscardFileAction(f.Path),
		Do: func(ctx context.Context) error { return c.cache.DiscardFile(ctx, repo, f.Path, f.Bucket) },
	}, false)
}

// DiscardSelection discards every selected file in one batch, or the
// active file when nothing is multi-selected.
func (c *Controller) DiscardSelection(ctx context.Context) error {
	c.mu.Lock()
	repo := c.state.ActiveRepo()
	files := c.state.SelectedFiles()
	if len(files) == 0 {
		if f, ok := c.state.ActiveFile(); ok {
			files = append(files, f)
		}
	}
	c.mu.Unlock()
	if repo == "" {
		return ErrNoRepository
	}
	if len(files) == 0 {
		return ErrNoFile
	}
	changes := make([]git.PathChange, 0, len(files))
	for _, f := range files {
		changes = append(changes, git.PathChange{RelPath: f.Path, Bucket: f.Bucket})
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.ActionDiscardChanges,
		Do: func(ctx context.Context) error { return c.cache.DiscardFiles(ctx, repo, changes) },
	}, false)
}

func (c *Controller) StageAll(ctx context.Context) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.ActionStageAll,
		Do: func(ctx context.Context) error { return c.cache.StageAll(ctx, repo) },
	}, false)
}

func (c *Controller) UnstageAll(ctx context.Context) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.ActionUnstageAll,
		Do: func(ctx context.Context) error { return c.cache.UnstageAll(ctx, repo) },
	}, false)
}

// DiscardAll resets the index and working tree to HEAD and removes
// untracked files.
func (c *Controller) DiscardAll(ctx context.Context) error {
	repo := c.activeRepo()
	if repo == "" {
		return ErrNoRepository
	}
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.ActionDiscardAll,
		Do: func(ctx context.Context) error { return c.cache.DiscardAll(ctx, repo) },
	}, false)
}

// CanCommit reports whether Commit would do anything.
func (c *Controller) CanCommit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canCommitLocked() == nil
}

func (c *Controller) canCommitLocked() error {
	if c.state.ActiveRepo() == "" {
		return ErrNoRepository
	}
	if strings.TrimSpace(c.state.CommitMessage()) == "" {
		return ErrEmptyMessage
	}
	if c.view.snapshot == nil || len(c.view.snapshot.Staged) == 0 {
		return ErrNothingStaged
	}
	return nil
}

// Commit records the staged changes with the current commit message. On
// success the message is cleared and the new id recorded.
func (c *Controller) Commit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.canCommitLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	repo := c.state.ActiveRepo()
	message := strings.TrimSpace(c.state.CommitMessage())
	c.mu.Unlock()

	var id string
	return c.run(ctx, repo, mutation.Action{
		ID: mutation.ActionCommit,
		Do: func(ctx context.Context) error {
			var err error
			id, err = c.cache.CommitStaged(ctx, repo, message)
			return err
		},
		Done: func() {
			if c.state.ActiveRepo() != repo {
				return
			}
			c.state.SetCommitMessage("")
			c.state.SetLastCommitID(id)
		},
	}, true)
}
