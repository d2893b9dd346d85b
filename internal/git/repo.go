package git

import (
	"context"
	"strings"

	"stagehand/internal/util"
)

func DiscoverRepoRoot(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", commandError("discover repository", err)
	}
	return strings.TrimSpace(out), nil
}

func DiscoverGitDir(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", commandError("discover git dir", err)
	}
	return strings.TrimSpace(out), nil
}

func hasHead(ctx context.Context, repoPath string) bool {
	_, err := util.Run(ctx, repoPath, "git", "rev-parse", "--verify", "-q", "HEAD")
	return err == nil
}
