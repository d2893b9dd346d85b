package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/git"
)

func item(path string) git.FileItem {
	return git.FileItem{Path: path, Status: git.StatusModified}
}

func TestReconcileSnapshotWaitsForData(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})

	assert.False(t, s.ReconcileSnapshot(nil))
	assert.Equal(t, "a.txt", s.ActivePath())
}

func TestReconcileSnapshotRehomesMovedPath(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})
	s.SetDiff(&git.FileVersions{Patch: "old"})

	snap := &git.Snapshot{Staged: []git.FileItem{item("a.txt")}}
	require.True(t, s.ReconcileSnapshot(snap))

	assert.Equal(t, git.BucketStaged, s.ActiveBucket())
	assert.Equal(t, "a.txt", s.ActivePath())
	assert.Nil(t, s.Diff())
	assert.Equal(t, []SelectedFile{{Bucket: git.BucketStaged, Path: "a.txt"}}, s.SelectedFiles())
	anchor, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, SelectedFile{Bucket: git.BucketStaged, Path: "a.txt"}, anchor)
}

func TestReconcileSnapshotRehomesSelectionWithoutDuplicates(t *testing.T) {
	s := New()
	s.SetSelection([]SelectedFile{
		{Bucket: git.BucketUntracked, Path: "a.txt"},
		{Bucket: git.BucketStaged, Path: "a.txt"},
		{Bucket: git.BucketUnstaged, Path: "b.txt"},
	})
	s.SetAnchor(&SelectedFile{Bucket: git.BucketUntracked, Path: "a.txt"})

	snap := &git.Snapshot{
		Staged:   []git.FileItem{item("a.txt")},
		Unstaged: []git.FileItem{item("b.txt")},
	}
	require.True(t, s.ReconcileSnapshot(snap))

	assert.Equal(t, []SelectedFile{
		{Bucket: git.BucketStaged, Path: "a.txt"},
		{Bucket: git.BucketUnstaged, Path: "b.txt"},
	}, s.SelectedFiles())
	anchor, _ := s.Anchor()
	assert.Equal(t, SelectedFile{Bucket: git.BucketStaged, Path: "a.txt"}, anchor)
	assert.False(t, s.ReconcileSnapshot(snap))
}

func TestReconcileSnapshotKeepsPathPresentInActiveBucket(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketStaged, Path: "a.txt"})
	snap := &git.Snapshot{
		Unstaged: []git.FileItem{item("a.txt")},
		Staged:   []git.FileItem{item("a.txt")},
	}

	assert.False(t, s.ReconcileSnapshot(snap))
	assert.Equal(t, git.BucketStaged, s.ActiveBucket())
}

func TestReconcileSnapshotClearsVanishedPath(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "gone.txt"})
	s.SetDiff(&git.FileVersions{Patch: "x"})

	snap := &git.Snapshot{Unstaged: []git.FileItem{item("b.txt")}}
	require.True(t, s.ReconcileSnapshot(snap))

	assert.Empty(t, s.ActivePath())
	assert.Nil(t, s.Diff())
	assert.Empty(t, s.SelectedFiles())
	_, ok := s.Anchor()
	assert.False(t, ok)
}

func TestReconcileSnapshotDropsVanishedSelections(t *testing.T) {
	s := New()
	s.SetSelection([]SelectedFile{
		{Bucket: git.BucketUnstaged, Path: "a.txt"},
		{Bucket: git.BucketUntracked, Path: "b.txt"},
		{Bucket: git.BucketStaged, Path: "c.txt"},
	})
	s.SetAnchor(&SelectedFile{Bucket: git.BucketUntracked, Path: "b.txt"})

	snap := &git.Snapshot{
		Unstaged: []git.FileItem{item("a.txt")},
		Staged:   []git.FileItem{item("c.txt")},
	}
	require.True(t, s.ReconcileSnapshot(snap))

	assert.Equal(t, []SelectedFile{
		{Bucket: git.BucketUnstaged, Path: "a.txt"},
		{Bucket: git.BucketStaged, Path: "c.txt"},
	}, s.SelectedFiles())
	_, ok := s.Anchor()
	assert.False(t, ok)
}

func TestReconcileSnapshotIsIdempotent(t *testing.T) {
	snaps := []*git.Snapshot{
		{},
		{Unstaged: []git.FileItem{item("a.txt")}},
		{Staged: []git.FileItem{item("a.txt"), item("b.txt")}},
		{Untracked: []git.FileItem{item("c.txt")}},
	}
	for _, snap := range snaps {
		s := New()
		s.SetSelection([]SelectedFile{
			{Bucket: git.BucketUnstaged, Path: "a.txt"},
			{Bucket: git.BucketUnstaged, Path: "b.txt"},
		})
		s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})
		s.ReconcileSnapshot(snap)
		before := s.View()

		assert.False(t, s.ReconcileSnapshot(snap))
		assert.Equal(t, before, s.View())
	}
}

func TestReconcileSnapshotIgnoredInHistoryMode(t *testing.T) {
	s := New()
	s.SetViewMode(ModeHistory)
	s.SelectCommit("c1")
	s.SelectCommitFile("only-in-commit.txt")

	assert.False(t, s.ReconcileSnapshot(&git.Snapshot{}))
	assert.Equal(t, "only-in-commit.txt", s.ActivePath())
}

func commits(ids ...string) []git.HistoryCommit {
	out := make([]git.HistoryCommit, 0, len(ids))
	for _, id := range ids {
		out = append(out, git.HistoryCommit{CommitID: id, ShortID: id})
	}
	return out
}

func TestReconcileCommits(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		list     []git.HistoryCommit
		want     string
		changed  bool
	}{
		{name: "no selection picks newest", selected: "", list: commits("c3", "c2"), want: "c3", changed: true},
		{name: "vanished picks newest", selected: "c1", list: commits("c3", "c2"), want: "c3", changed: true},
		{name: "present is kept", selected: "c2", list: commits("c3", "c2"), want: "c2"},
		{name: "empty list clears", selected: "c2", list: nil, want: "", changed: true},
		{name: "empty list with nothing selected", selected: "", list: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.SetViewMode(ModeHistory)
			if tt.selected != "" {
				s.SelectCommit(tt.selected)
			}
			assert.Equal(t, tt.changed, s.ReconcileCommits(tt.list))
			assert.Equal(t, tt.want, s.HistoryCommitID())
			assert.False(t, s.ReconcileCommits(tt.list))
		})
	}
}

func TestReconcileCommitsEmptyResetsNavigation(t *testing.T) {
	s := New()
	s.SetViewMode(ModeHistory)
	s.SelectCommit("c1")
	s.SetHistoryNavTarget(NavFiles)
	s.SelectCommitFile("a.txt")

	require.True(t, s.ReconcileCommits(nil))
	assert.Equal(t, NavCommits, s.HistoryNavTarget())
	assert.Empty(t, s.ActivePath())
}

func TestReconcileCommitsSwitchClearsFile(t *testing.T) {
	s := New()
	s.SetViewMode(ModeHistory)
	s.SelectCommit("old")
	s.SelectCommitFile("a.txt")

	require.True(t, s.ReconcileCommits(commits("new")))
	assert.Equal(t, "new", s.HistoryCommitID())
	assert.Empty(t, s.ActivePath())
}

func TestReconcileCommitFiles(t *testing.T) {
	s := New()
	s.SetViewMode(ModeHistory)
	s.SelectCommit("c1")

	files := []git.FileItem{item("b.txt"), item("c.txt")}
	require.True(t, s.ReconcileCommitFiles("c1", files))
	assert.Equal(t, "b.txt", s.ActivePath())
	assert.False(t, s.ReconcileCommitFiles("c1", files))

	s.SelectCommitFile("c.txt")
	assert.False(t, s.ReconcileCommitFiles("c1", files))
	assert.Equal(t, "c.txt", s.ActivePath())

	assert.False(t, s.ReconcileCommitFiles("other", nil), "list for another commit is ignored")
	assert.Equal(t, "c.txt", s.ActivePath())

	require.True(t, s.ReconcileCommitFiles("c1", nil))
	assert.Empty(t, s.ActivePath())
}

func TestReconcileHistoryIgnoredInChangesMode(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})

	assert.False(t, s.ReconcileCommits(nil))
	assert.False(t, s.ReconcileCommitFiles("", nil))
	assert.Equal(t, "a.txt", s.ActivePath())
}
