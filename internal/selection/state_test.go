package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stagehand/internal/git"
)

func TestSetSelectionDeduplicates(t *testing.T) {
	s := New()
	a := SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"}
	b := SelectedFile{Bucket: git.BucketStaged, Path: "a.txt"}

	s.SetSelection([]SelectedFile{a, b, a})

	assert.Equal(t, []SelectedFile{a, b}, s.SelectedFiles())
}

func TestToggleSelected(t *testing.T) {
	s := New()
	a := SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"}
	b := SelectedFile{Bucket: git.BucketUnstaged, Path: "b.txt"}
	s.SelectFile(a)

	s.ToggleSelected(b)
	assert.Equal(t, []SelectedFile{a, b}, s.SelectedFiles())
	anchor, _ := s.Anchor()
	assert.Equal(t, b, anchor)

	s.ToggleSelected(a)
	assert.Equal(t, []SelectedFile{b}, s.SelectedFiles())
	active, ok := s.ActiveFile()
	assert.True(t, ok)
	assert.Equal(t, a, active)
}

func TestRepoSwitchResetsSelection(t *testing.T) {
	s := New()
	s.AddRepo("/r1")
	s.AddRepo("/r2")
	assert.Equal(t, "/r1", s.ActiveRepo())

	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})
	s.SetError("boom")
	s.SetActiveRepo("/r2")

	assert.Empty(t, s.ActivePath())
	assert.Empty(t, s.SelectedFiles())
	assert.Empty(t, s.Error())
}

func TestRemoveRepoMovesToNeighbour(t *testing.T) {
	s := New()
	for _, r := range []string{"/r1", "/r2", "/r3"} {
		s.AddRepo(r)
	}
	s.SetActiveRepo("/r2")

	s.RemoveRepo("/r2")
	assert.Equal(t, "/r3", s.ActiveRepo())
	s.RemoveRepo("/r3")
	assert.Equal(t, "/r1", s.ActiveRepo())
	s.RemoveRepo("/r1")
	assert.Empty(t, s.ActiveRepo())
	assert.Empty(t, s.Repos())
}

func TestViewModeSwitchClearsSharedPath(t *testing.T) {
	s := New()
	s.SelectCommit("c1")
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})

	s.SetViewMode(ModeHistory)
	assert.Empty(t, s.ActivePath())
	assert.Equal(t, "c1", s.HistoryCommitID())
}

func TestViewIsACopy(t *testing.T) {
	s := New()
	s.SelectFile(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"})
	v := s.View()

	v.SelectedFiles[0].Path = "mutated"
	v.Anchor.Path = "mutated"

	assert.Equal(t, "a.txt", s.SelectedFiles()[0].Path)
	anchor, _ := s.Anchor()
	assert.Equal(t, "a.txt", anchor.Path)
	assert.True(t, s.View().IsSelected(SelectedFile{Bucket: git.BucketUnstaged, Path: "a.txt"}))
}
