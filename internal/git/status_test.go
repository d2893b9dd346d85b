package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePorcelainV2ZBuckets(t *testing.T) {
	data := []byte(
		"# branch.oid 1234567890abcdef\x00" +
			"# branch.head feature/x\x00" +
			"1 .M N... 100644 100644 100644 aaa bbb src/main.go\x00" +
			"1 A. N... 000000 100644 100644 000 ccc docs/new file.md\x00" +
			"1 MM N... 100644 100644 100644 aaa bbb both.txt\x00" +
			"2 R. N... 100644 100644 100644 aaa bbb R100 renamed.txt\x00orig.txt\x00" +
			"u UU N... 100644 100644 100644 100644 aaa bbb ccc conflict.txt\x00" +
			"? notes/todo.txt\x00" +
			"! ignored.log\x00",
	)

	snap, err := parsePorcelainV2Z(data)
	require.NoError(t, err)

	assert.Equal(t, "feature/x", snap.Branch)
	assert.Equal(t, []FileItem{
		{Path: "both.txt", Status: StatusModified},
		{Path: "conflict.txt", Status: StatusUnmerged},
		{Path: "src/main.go", Status: StatusModified},
	}, snap.Unstaged)
	assert.Equal(t, []FileItem{
		{Path: "both.txt", Status: StatusModified},
		{Path: "conflict.txt", Status: StatusUnmerged},
		{Path: "docs/new file.md", Status: StatusAdded},
		{Path: "renamed.txt", Status: StatusRenamed, PreviousPath: "orig.txt"},
	}, snap.Staged)
	assert.Equal(t, []FileItem{{Path: "notes/todo.txt", Status: StatusUntracked}}, snap.Untracked)
}

func TestParsePorcelainV2ZDetachedHead(t *testing.T) {
	snap, err := parsePorcelainV2Z([]byte("# branch.head (detached)\x00"))
	require.NoError(t, err)
	assert.Equal(t, "HEAD", snap.Branch)
	assert.Empty(t, snap.Unstaged)
	assert.NotNil(t, snap.Staged)
}

func TestParsePorcelainV2ZRejectsUnknownRecord(t *testing.T) {
	_, err := parsePorcelainV2Z([]byte("Z what\x00"))
	assert.Error(t, err)
}

func TestSnapshotLocate(t *testing.T) {
	snap := Snapshot{
		Staged:    []FileItem{{Path: "a.txt"}},
		Untracked: []FileItem{{Path: "b.txt"}},
	}

	b, ok := snap.Locate("b.txt")
	assert.True(t, ok)
	assert.Equal(t, BucketUntracked, b)

	_, ok = snap.Locate("missing.txt")
	assert.False(t, ok)
	assert.True(t, snap.Contains(BucketStaged, "a.txt"))
	assert.False(t, snap.Contains(BucketUnstaged, "a.txt"))
}
