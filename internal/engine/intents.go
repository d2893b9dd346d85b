package engine

import (
	"stagehand/internal/navigation"
	"stagehand/internal/selection"
)

// SetViewMode switches between changes and history and reconciles the
// new mode against the data already applied.
func (c *Controller) SetViewMode(m selection.ViewMode) {
	c.update(func() {
		c.state.SetViewMode(m)
		c.reconcileLocked()
	})
}

func (c *Controller) ToggleStagedCollapsed() { c.update(c.state.ToggleStagedCollapsed) }

func (c *Controller) ToggleChangesCollapsed() { c.update(c.state.ToggleChangesCollapsed) }

func (c *Controller) SetHistoryFilter(filter string) {
	c.update(func() { c.state.SetHistoryFilter(filter) })
}

func (c *Controller) SetDiffStyle(d selection.DiffStyle) {
	c.update(func() { c.state.SetDiffStyle(d) })
}

func (c *Controller) SetHistoryNavTarget(t selection.NavTarget) {
	c.update(func() { c.state.SetHistoryNavTarget(t) })
}

func (c *Controller) SetCommitMessage(msg string) {
	c.update(func() { c.state.SetCommitMessage(msg) })
}

// SelectFile is a plain click on a file row.
func (c *Controller) SelectFile(f selection.SelectedFile) {
	c.update(func() { c.state.SelectFile(f) })
}

// ToggleFile adds or removes one row from the multi-select.
func (c *Controller) ToggleFile(f selection.SelectedFile) {
	c.update(func() { c.state.ToggleSelected(f) })
}

// ExtendFileSelection selects the visible range from the anchor to target.
func (c *Controller) ExtendFileSelection(target selection.SelectedFile) {
	c.update(func() { c.extendLocked(target) })
}

func (c *Controller) extendLocked(target selection.SelectedFile) {
	var anchor, active *selection.SelectedFile
	if a, ok := c.state.Anchor(); ok {
		anchor = &a
	}
	if f, ok := c.state.ActiveFile(); ok {
		active = &f
	}
	ext := navigation.ExtendRange(c.fileRowsLocked(), c.state.SelectedFiles(), anchor, active, target)
	c.state.SetSelection(ext.Selected)
	if ext.Anchor != nil {
		c.state.SetAnchor(ext.Anchor)
	}
	c.state.SetActiveFile(target)
}

// SelectCommit moves the history cursor and reconciles against any cached
// file list of that commit.
func (c *Controller) SelectCommit(id string) {
	c.update(func() {
		c.state.SelectCommit(id)
		c.reconcileLocked()
	})
}

func (c *Controller) SelectCommitFile(path string) {
	c.update(func() { c.state.SelectCommitFile(path) })
}

// Move steps the cursor of the current list by one row, the same way a
// click on that row would. It does nothing while focus is in an editable
// element, and reports whether the key was consumed.
func (c *Controller) Move(dir navigation.Direction, focus navigation.Element) bool {
	if navigation.IsTypingContext(focus) {
		return false
	}
	c.mu.Lock()
	moved := c.moveLocked(dir)
	c.mu.Unlock()
	if moved {
		c.changed()
	}
	return moved
}

func (c *Controller) moveLocked(dir navigation.Direction) bool {
	if c.state.ViewMode() == selection.ModeChanges {
		rows := c.fileRowsLocked()
		cur := -1
		if f, ok := c.state.ActiveFile(); ok {
			cur = navigation.IndexOfFile(rows, f)
		}
		i, ok := navigation.Step(cur, len(rows), dir)
		if !ok {
			return false
		}
		c.state.SelectFile(rows[i].File())
		return true
	}

	if c.state.HistoryNavTarget() == selection.NavFiles {
		if c.view.commitFilesFor != c.state.HistoryCommitID() {
			return false
		}
		files := c.view.commitFiles
		i, ok := navigation.Step(navigation.IndexOfPath(files, c.state.ActivePath()), len(files), dir)
		if !ok {
			return false
		}
		c.state.SelectCommitFile(files[i].Path)
		return true
	}

	commits := navigation.FilterCommits(c.view.commits, c.state.HistoryFilter())
	i, ok := navigation.Step(navigation.IndexOfCommit(commits, c.state.HistoryCommitID()), len(commits), dir)
	if !ok {
		return false
	}
	c.state.SelectCommit(commits[i].CommitID)
	c.reconcileLocked()
	return true
}

// Extend grows the file range one row in dir from the active row. The
// anchor stays where it is. Only changes mode supports ranges.
func (c *Controller) Extend(dir navigation.Direction, focus navigation.Element) bool {
	if navigation.IsTypingContext(focus) {
		return false
	}
	c.mu.Lock()
	extended := false
	if c.state.ViewMode() == selection.ModeChanges {
		rows := c.fileRowsLocked()
		cur := -1
		if f, ok := c.state.ActiveFile(); ok {
			cur = navigation.IndexOfFile(rows, f)
		}
		if i, ok := navigation.Step(cur, len(rows), dir); ok {
			c.extendLocked(rows[i].File())
			extended = true
		}
	}
	c.mu.Unlock()
	if extended {
		c.changed()
	}
	return extended
}
