package selection

import (
	"slices"

	"stagehand/internal/git"
)

// ReconcileSnapshot repairs the changes-mode selection against snap. A nil
// snapshot means nothing has been fetched yet and leaves the state alone.
// It reports whether anything changed; a second call with the same
// snapshot never does.
func (s *State) ReconcileSnapshot(snap *git.Snapshot) bool {
	if snap == nil || s.viewMode != ModeChanges {
		return false
	}
	changed := false

	if s.activePath != "" && !snap.Contains(s.activeBucket, s.activePath) {
		if b, ok := snap.Locate(s.activePath); ok {
			s.activeBucket = b
			s.diff = nil
		} else {
			s.ClearDiffSelection()
		}
		changed = true
	}

	// A moved entry follows its path to the bucket that now holds it.
	kept := make([]SelectedFile, 0, len(s.selected))
	for _, f := range s.selected {
		moved, ok := rehome(snap, f)
		if ok && !slices.Contains(kept, moved) {
			kept = append(kept, moved)
		}
	}
	if !slices.Equal(kept, s.selected) {
		s.selected = kept
		changed = true
	}

	if s.anchor != nil {
		if f, ok := rehome(snap, *s.anchor); !ok {
			s.anchor = nil
			changed = true
		} else if f != *s.anchor {
			s.anchor = &f
			changed = true
		}
	}
	return changed
}

// rehome returns f with the bucket that holds its path in snap, or false
// when the path is gone.
func rehome(snap *git.Snapshot, f SelectedFile) (SelectedFile, bool) {
	if snap.Contains(f.Bucket, f.Path) {
		return f, true
	}
	b, ok := snap.Locate(f.Path)
	if !ok {
		return f, false
	}
	f.Bucket = b
	return f, true
}

// ReconcileCommits keeps the history cursor on a commit that exists,
// falling back to the newest one.
func (s *State) ReconcileCommits(commits []git.HistoryCommit) bool {
	if s.viewMode != ModeHistory {
		return false
	}
	if len(commits) == 0 {
		if s.historyCommitID == "" && s.activePath == "" && s.historyNavTarget == NavCommits &&
			len(s.selected) == 0 && s.anchor == nil && s.diff == nil {
			return false
		}
		s.ClearHistorySelection()
		return true
	}
	for _, c := range commits {
		if c.CommitID == s.historyCommitID {
			return false
		}
	}
	s.SelectCommit(commits[0].CommitID)
	return true
}

// ReconcileCommitFiles keeps activePath on a file of commitID. Lists for a
// commit other than the selected one are ignored.
func (s *State) ReconcileCommitFiles(commitID string, files []git.FileItem) bool {
	if s.viewMode != ModeHistory || commitID == "" || commitID != s.historyCommitID {
		return false
	}
	if len(files) == 0 {
		if s.activePath == "" && s.diff == nil {
			return false
		}
		s.ClearDiffSelection()
		return true
	}
	for _, f := range files {
		if f.Path == s.activePath {
			return false
		}
	}
	s.SelectCommitFile(files[0].Path)
	return true
}
