package engine

import (
	"context"

	"go.uber.org/zap"

	"stagehand/internal/comments"
	"stagehand/internal/mutation"
	"stagehand/internal/selection"
)

// CopyScope picks which comments CopyComments puts on the clipboard.
type CopyScope int

const (
	ScopeFile CopyScope = iota
	ScopeRepo
)

func (c *Controller) commentTargetLocked() (comments.Target, error) {
	repo := c.state.ActiveRepo()
	if repo == "" {
		return comments.Target{}, ErrNoRepository
	}
	path := c.state.ActivePath()
	if path == "" {
		return comments.Target{}, ErrNoFile
	}
	t := comments.Target{RepoPath: repo, FilePath: path}
	if c.state.ViewMode() == selection.ModeChanges {
		t.Bucket = c.state.ActiveBucket()
	}
	return t, nil
}

// AddComment attaches text to a line range of the active file.
func (c *Controller) AddComment(r comments.Range, text string) (comments.Comment, error) {
	c.mu.Lock()
	target, err := c.commentTargetLocked()
	if err != nil {
		c.mu.Unlock()
		return comments.Comment{}, err
	}
	added, err := c.comments.Add(target, r, text)
	if err == nil {
		c.persistLocked()
	}
	c.mu.Unlock()
	if err == nil {
		c.changed()
	}
	return added, err
}

// UpdateComment replaces the text of a comment. Blank text is ignored.
func (c *Controller) UpdateComment(id, text string) bool {
	c.mu.Lock()
	ok := c.comments.Update(id, text)
	if ok {
		c.persistLocked()
	}
	c.mu.Unlock()
	if ok {
		c.changed()
	}
	return ok
}

func (c *Controller) RemoveComment(id string) bool {
	c.mu.Lock()
	ok := c.comments.Remove(id)
	if ok {
		c.persistLocked()
	}
	c.mu.Unlock()
	if ok {
		c.changed()
	}
	return ok
}

// FileComments lists the comments of the active file.
func (c *Controller) FileComments() []comments.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comments.ForFile(c.state.ActiveRepo(), c.state.ActivePath())
}

// RepoComments lists every comment of the active repository.
func (c *Controller) RepoComments() []comments.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comments.ForRepo(c.state.ActiveRepo())
}

// CommentCounts maps paths of the active repository to comment counts.
func (c *Controller) CommentCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comments.CountByFile(c.state.ActiveRepo())
}

// Annotations anchors the active file's comments at their end lines.
func (c *Controller) Annotations() []comments.Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comments.Annotations(c.state.ActiveRepo(), c.state.ActivePath())
}

// CopyComments puts the scoped comments on the clipboard and returns how
// many were copied. An empty scope copies nothing and returns
// ErrNoComments. A clipboard failure is stored in the error slot.
func (c *Controller) CopyComments(ctx context.Context, scope CopyScope) (int, error) {
	c.mu.Lock()
	repo := c.state.ActiveRepo()
	if repo == "" {
		c.mu.Unlock()
		return 0, ErrNoRepository
	}
	var list []comments.Comment
	if scope == ScopeRepo {
		list = c.comments.ForRepo(repo)
	} else {
		list = c.comments.ForFile(repo, c.state.ActivePath())
	}
	c.mu.Unlock()
	if len(list) == 0 {
		return 0, ErrNoComments
	}

	if err := c.clip.Write(ctx, comments.Format(list)); err != nil {
		c.log.Warn("clipboard write failed", zap.Error(err))
		c.update(func() { c.state.SetError(mutation.Message(err)) })
		return 0, err
	}
	return len(list), nil
}

func (c *Controller) persistLocked() {
	if c.commentFile == nil {
		return
	}
	if err := c.commentFile.Save(c.comments.All()); err != nil {
		c.log.Warn("saving comments failed", zap.String("path", c.commentFile.Path()), zap.Error(err))
		c.state.SetError("save comments: " + err.Error())
	}
}
