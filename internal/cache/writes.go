package cache

import (
	"context"

	"go.uber.org/zap"

	"stagehand/internal/git"
)

// Each write invalidates its declared read keys only on success.

func (c *Cache) StageFile(ctx context.Context, repo, relPath string) error {
	if err := c.svc.StageFile(ctx, repo, relPath); err != nil {
		return err
	}
	c.invalidateFile(repo, relPath)
	return nil
}

func (c *Cache) UnstageFile(ctx context.Context, repo, relPath string) error {
	if err := c.svc.UnstageFile(ctx, repo, relPath); err != nil {
		return err
	}
	c.invalidateFile(repo, relPath)
	return nil
}

func (c *Cache) DiscardFile(ctx context.Context, repo, relPath string, bucket git.Bucket) error {
	if err := c.svc.DiscardFile(ctx, repo, relPath, bucket); err != nil {
		return err
	}
	c.invalidateFile(repo, relPath)
	return nil
}

// DiscardFiles leaves per-file content entries alone; they refresh when
// next requested after going stale elsewhere.
func (c *Cache) DiscardFiles(ctx context.Context, repo string, files []git.PathChange) error {
	if err := c.svc.DiscardFiles(ctx, repo, files); err != nil {
		return err
	}
	c.Invalidate(TagSnapshot(repo))
	return nil
}

func (c *Cache) DiscardAll(ctx context.Context, repo string) error {
	if err := c.svc.DiscardAll(ctx, repo); err != nil {
		return err
	}
	c.Invalidate(TagSnapshot(repo))
	return nil
}

func (c *Cache) StageAll(ctx context.Context, repo string) error {
	if err := c.svc.StageAll(ctx, repo); err != nil {
		return err
	}
	c.Invalidate(TagSnapshot(repo))
	return nil
}

func (c *Cache) UnstageAll(ctx context.Context, repo string) error {
	if err := c.svc.UnstageAll(ctx, repo); err != nil {
		return err
	}
	c.Invalidate(TagSnapshot(repo))
	return nil
}

func (c *Cache) CommitStaged(ctx context.Context, repo, message string) (string, error) {
	id, err := c.svc.CommitStaged(ctx, repo, message)
	if err != nil {
		return "", err
	}
	c.Invalidate(TagSnapshot(repo), TagHistory(repo))
	c.log.Debug("commit created", zap.String("repo", repo), zap.String("commit", id))
	return id, nil
}

func (c *Cache) invalidateFile(repo, relPath string) {
	c.Invalidate(TagSnapshot(repo), TagFile(repo, relPath))
}
