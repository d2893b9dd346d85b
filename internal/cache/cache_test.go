package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/git"
	"stagehand/internal/git/gittest"
)

const repo = "/repo"

func newTestCache(t *testing.T, opts Options) (*Cache, *gittest.Fake) {
	t.Helper()
	fake := gittest.New()
	fake.SetSnapshot(repo, git.Snapshot{
		Branch:   "main",
		Unstaged: []git.FileItem{{Path: "a.txt", Status: git.StatusModified}, {Path: "b.txt", Status: git.StatusModified}},
	})
	c, err := New(fake, opts)
	require.NoError(t, err)
	return c, fake
}

func TestSnapshotServedFromCacheWhileFresh(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	first, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	second, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.Calls(gittest.OpSnapshot))
}

func TestConcurrentReadsShareOneFetch(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	gate := fake.Hold(gittest.OpSnapshot)

	var wg sync.WaitGroup
	results := make([]git.Snapshot, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := c.Snapshot(context.Background(), repo)
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}

	<-gate.Entered()
	time.Sleep(10 * time.Millisecond)
	gate.Release()
	wg.Wait()

	assert.Equal(t, 1, fake.Calls(gittest.OpSnapshot))
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[1], results[2])
}

func TestStageFileInvalidatesSnapshotAndThatFileOnly(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	_, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "a.txt")
	require.NoError(t, err)
	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "b.txt")
	require.NoError(t, err)
	require.Equal(t, 2, fake.Calls(gittest.OpFileVersions))

	require.NoError(t, c.StageFile(ctx, repo, "a.txt"))

	snap, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(gittest.OpSnapshot))
	assert.True(t, snap.Contains(git.BucketStaged, "a.txt"))

	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(gittest.OpFileVersions))

	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, fake.Calls(gittest.OpFileVersions))
}

func TestGroupWritesInvalidateSnapshotOnly(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	_, err := c.FileVersions(ctx, repo, git.BucketUnstaged, "a.txt")
	require.NoError(t, err)
	_, err = c.Snapshot(ctx, repo)
	require.NoError(t, err)

	require.NoError(t, c.StageAll(ctx, repo))
	require.NoError(t, c.UnstageAll(ctx, repo))
	require.NoError(t, c.DiscardFiles(ctx, repo, []git.PathChange{{RelPath: "a.txt", Bucket: git.BucketUnstaged}}))

	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls(gittest.OpFileVersions))

	_, err = c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(gittest.OpSnapshot))
}

func TestCommitInvalidatesHistory(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	history, err := c.CommitHistory(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, history)

	id, err := c.CommitStaged(ctx, repo, "first")
	require.NoError(t, err)

	history, err = c.CommitHistory(ctx, repo)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, id, history[0].CommitID)
	assert.Equal(t, 2, fake.Calls(gittest.OpCommitHistory))
}

func TestFailedReadKeepsPreviousData(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	before, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)

	boom := errors.New("boom")
	fake.Fail(gittest.OpSnapshot, boom)
	c.Invalidate(TagSnapshot(repo))

	_, err = c.Snapshot(ctx, repo)
	assert.ErrorIs(t, err, boom)

	cached, ok := c.CachedSnapshot(repo)
	require.True(t, ok)
	assert.Equal(t, before, cached)
}

func TestFailedWriteDoesNotInvalidate(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()

	_, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)

	fake.Fail(gittest.OpStageFile, errors.New("locked"))
	assert.Error(t, c.StageFile(ctx, repo, "a.txt"))

	_, err = c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls(gittest.OpSnapshot))
}

func TestInvalidateDuringFetchStartsNewFetch(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	ctx := context.Background()
	gate := fake.Hold(gittest.OpSnapshot)

	done := make(chan git.Snapshot)
	go func() {
		snap, err := c.Snapshot(ctx, repo)
		assert.NoError(t, err)
		done <- snap
	}()
	<-gate.Entered()

	fake.SetSnapshot(repo, git.Snapshot{Branch: "next"})
	c.Invalidate(TagSnapshot(repo))

	latest, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "next", latest.Branch)

	gate.Release()
	old := <-done
	assert.Equal(t, "main", old.Branch)

	cached, ok := c.CachedSnapshot(repo)
	require.True(t, ok)
	assert.Equal(t, "next", cached.Branch)
	assert.Equal(t, 2, fake.Calls(gittest.OpSnapshot))
}

func TestMaxAgeExpiresEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	c, fake := newTestCache(t, Options{MaxAge: time.Minute, Now: func() time.Time { return now }})
	ctx := context.Background()

	_, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls(gittest.OpSnapshot))

	now = now.Add(time.Minute)
	_, err = c.Snapshot(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(gittest.OpSnapshot))
}

func TestForgetRepoDropsEntries(t *testing.T) {
	c, _ := newTestCache(t, Options{})
	ctx := context.Background()

	_, err := c.Snapshot(ctx, repo)
	require.NoError(t, err)
	_, err = c.FileVersions(ctx, repo, git.BucketUnstaged, "a.txt")
	require.NoError(t, err)

	c.ForgetRepo(repo)

	_, ok := c.CachedSnapshot(repo)
	assert.False(t, ok)
	assert.Equal(t, 0, c.contents.Len())
}

func TestCallerContextCancelStopsWaiting(t *testing.T) {
	c, fake := newTestCache(t, Options{})
	gate := fake.Hold(gittest.OpSnapshot)
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Snapshot(ctx, repo)
		errc <- err
	}()
	<-gate.Entered()
	cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
}
