package comments

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/git"
)

var target = Target{RepoPath: "/repo", FilePath: "a.go", Bucket: git.BucketUnstaged}

func newTestStore() *Store {
	s := NewStore()
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestNormalizeRange(t *testing.T) {
	got := NormalizeRange(Range{Start: 10, End: 3, Side: SideAdditions})
	assert.Equal(t, Range{Start: 3, End: 10, Side: SideAdditions, EndSide: SideAdditions}, got)

	got = NormalizeRange(Range{Start: 1, End: 2, Side: SideDeletions, EndSide: SideAdditions})
	assert.Equal(t, SideAdditions, got.EndSide)
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "L5", FormatRange(5, 5))
	assert.Equal(t, "L5-9", FormatRange(5, 9))
}

func TestAddNormalizesAndTrims(t *testing.T) {
	s := newTestStore()

	c, err := s.Add(target, Range{Start: 9, End: 5, Side: SideAdditions}, "  hello \n")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 5, c.StartLine)
	assert.Equal(t, 9, c.EndLine)
	assert.Equal(t, SideAdditions, c.EndSide)
	assert.Equal(t, "hello", c.Text)
	assert.Equal(t, git.BucketUnstaged, c.Bucket)
	assert.Len(t, s.All(), 1)
}

func TestAddRejectsEmptyInput(t *testing.T) {
	s := newTestStore()

	_, err := s.Add(target, Range{Start: 1, End: 1}, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	_, err = s.Add(target, Range{}, "text")
	assert.ErrorIs(t, err, ErrEmptyRange)
	assert.Empty(t, s.All())
}

func TestIDsAreUnique(t *testing.T) {
	s := newTestStore()
	a, err := s.Add(target, Range{Start: 1, End: 1}, "one")
	require.NoError(t, err)
	b, err := s.Add(target, Range{Start: 1, End: 1}, "two")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdate(t *testing.T) {
	s := newTestStore()
	c, err := s.Add(target, Range{Start: 1, End: 1}, "hello")
	require.NoError(t, err)

	assert.True(t, s.Update(c.ID, "  hi  "))
	got, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Text)

	assert.False(t, s.Update(c.ID, "   "))
	got, _ = s.Get(c.ID)
	assert.Equal(t, "hi", got.Text)

	assert.False(t, s.Update("missing", "x"))
}

func TestRemoveAndRemoveRepo(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(target, Range{Start: 1, End: 1}, "a")
	_, _ = s.Add(target, Range{Start: 2, End: 2}, "b")
	other := Target{RepoPath: "/other", FilePath: "a.go", Bucket: git.BucketStaged}
	_, _ = s.Add(other, Range{Start: 3, End: 3}, "c")

	assert.True(t, s.Remove(a.ID))
	assert.False(t, s.Remove(a.ID))
	assert.Equal(t, 1, s.RemoveRepo("/repo"))
	require.Len(t, s.All(), 1)
	assert.Equal(t, "/other", s.All()[0].RepoPath)
}

func TestRemoveUnknownIDWithHoles(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(target, Range{Start: 1, End: 1}, "a")
	s.items = append(s.items, Comment{})

	assert.False(t, s.Remove("missing"))
	assert.True(t, s.Remove(a.ID))
	assert.Empty(t, s.All())
}

func TestQueries(t *testing.T) {
	s := newTestStore()
	_, _ = s.Add(target, Range{Start: 7, End: 9, Side: SideAdditions}, "later")
	_, _ = s.Add(target, Range{Start: 2, End: 2, Side: SideDeletions, EndSide: SideAdditions}, "earlier")
	_, _ = s.Add(Target{RepoPath: "/repo", FilePath: "b.go"}, Range{Start: 1, End: 1}, "b")
	_, _ = s.Add(Target{RepoPath: "/other", FilePath: "a.go"}, Range{Start: 1, End: 1}, "x")

	file := s.ForFile("/repo", "a.go")
	require.Len(t, file, 2)
	assert.Equal(t, "earlier", file[0].Text)

	assert.Equal(t, map[string]int{"a.go": 2, "b.go": 1}, s.CountByFile("/repo"))

	ann := s.Annotations("/repo", "a.go")
	require.Len(t, ann, 2)
	assert.Equal(t, Annotation{CommentID: file[0].ID, Line: 2, Side: SideAdditions, Text: "earlier"}, ann[0])
	assert.Equal(t, 9, ann[1].Line)

	assert.Equal(t,
		"@a.go#L2 - earlier\n@a.go#L7-9 - later\n@b.go#L1 - b",
		Format(s.ForRepo("/repo")))
	assert.Empty(t, Format(nil))
}

func TestReplaceDropsHoles(t *testing.T) {
	s := newTestStore()
	s.Replace([]Comment{{ID: "1", Text: "keep"}, {}, {ID: "2", Text: "also"}})

	assert.Len(t, s.All(), 2)
}

func TestFileRoundTrip(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "state", "comments.json"))

	loaded, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	s := newTestStore()
	_, err = s.Add(target, Range{Start: 4, End: 6, Side: SideAdditions}, "note")
	require.NoError(t, err)
	require.NoError(t, f.Save(s.All()))

	loaded, err = f.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, s.All()[0].ID, loaded[0].ID)
	assert.Equal(t, "note", loaded[0].Text)
	assert.True(t, s.All()[0].CreatedAt.Equal(loaded[0].CreatedAt))
}
