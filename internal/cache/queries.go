package cache

import (
	"context"

	"stagehand/internal/git"
)

func (c *Cache) Snapshot(ctx context.Context, repo string) (git.Snapshot, error) {
	return load(ctx, c, SnapshotKey(repo), []string{TagRepo(repo), TagSnapshot(repo)},
		func(ctx context.Context) (git.Snapshot, error) {
			return c.svc.Snapshot(ctx, repo)
		})
}

func (c *Cache) CommitHistory(ctx context.Context, repo string) ([]git.HistoryCommit, error) {
	return load(ctx, c, HistoryKey(repo), []string{TagRepo(repo), TagHistory(repo)},
		func(ctx context.Context) ([]git.HistoryCommit, error) {
			return c.svc.CommitHistory(ctx, repo, c.opts.HistoryLimit)
		})
}

func (c *Cache) CommitFiles(ctx context.Context, repo, commitID string) ([]git.FileItem, error) {
	return load(ctx, c, CommitFilesKey(repo, commitID), []string{TagRepo(repo), TagCommit(repo, commitID)},
		func(ctx context.Context) ([]git.FileItem, error) {
			return c.svc.CommitFiles(ctx, repo, commitID)
		})
}

func (c *Cache) CommitFileVersions(ctx context.Context, repo, commitID, relPath, previousPath string) (git.FileVersions, error) {
	return load(ctx, c, CommitVersionsKey(repo, commitID, relPath, previousPath), []string{TagRepo(repo), TagCommit(repo, commitID)},
		func(ctx context.Context) (git.FileVersions, error) {
			return c.svc.CommitFileVersions(ctx, repo, commitID, relPath, previousPath)
		})
}

func (c *Cache) FileVersions(ctx context.Context, repo string, bucket git.Bucket, relPath string) (git.FileVersions, error) {
	return load(ctx, c, FileVersionsKey(repo, bucket, relPath), []string{TagRepo(repo), TagWorktree(repo), TagFile(repo, relPath)},
		func(ctx context.Context) (git.FileVersions, error) {
			return c.svc.FileVersions(ctx, repo, bucket, relPath)
		})
}

func (c *Cache) CachedSnapshot(repo string) (git.Snapshot, bool) {
	return peek[git.Snapshot](c, SnapshotKey(repo))
}

func (c *Cache) CachedHistory(repo string) ([]git.HistoryCommit, bool) {
	return peek[[]git.HistoryCommit](c, HistoryKey(repo))
}

func (c *Cache) CachedCommitFiles(repo, commitID string) ([]git.FileItem, bool) {
	return peek[[]git.FileItem](c, CommitFilesKey(repo, commitID))
}
