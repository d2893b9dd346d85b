package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stagehand/internal/util"
)

func (Exec) StageFile(ctx context.Context, repoPath, relPath string) error {
	const op = "stage file"
	if err := checkWrite(op, repoPath, relPath); err != nil {
		return err
	}
	_, err := util.Run(ctx, repoPath, "git", "add", "-A", "--", relPath)
	return commandError(op, err)
}

func (Exec) UnstageFile(ctx context.Context, repoPath, relPath string) error {
	const op = "unstage file"
	if err := checkWrite(op, repoPath, relPath); err != nil {
		return err
	}
	return commandError(op, unstage(ctx, repoPath, relPath))
}

func (Exec) DiscardFile(ctx context.Context, repoPath, relPath string, bucket Bucket) error {
	const op = "discard file"
	if err := checkWrite(op, repoPath, relPath); err != nil {
		return err
	}
	return commandError(op, discardGroup(ctx, repoPath, bucket, []string{relPath}))
}

// DiscardFiles runs one command per bucket group, in the order untracked,
// unstaged, staged. A failure stops the batch; earlier groups stay discarded.
func (Exec) DiscardFiles(ctx context.Context, repoPath string, files []PathChange) error {
	const op = "discard files"
	if err := validateRepoPath(repoPath); err != nil {
		return err
	}
	groups := map[Bucket][]string{}
	for _, f := range files {
		if err := ValidateRelPath(f.RelPath); err != nil {
			return &CommandError{Op: op, Message: err.Error(), Err: err}
		}
		groups[f.Bucket] = append(groups[f.Bucket], f.RelPath)
	}
	for _, b := range []Bucket{BucketUntracked, BucketUnstaged, BucketStaged} {
		if len(groups[b]) == 0 {
			continue
		}
		if err := discardGroup(ctx, repoPath, b, groups[b]); err != nil {
			return commandError(op, err)
		}
	}
	return nil
}

func (Exec) DiscardAll(ctx context.Context, repoPath string) error {
	const op = "discard all"
	if err := validateRepoPath(repoPath); err != nil {
		return err
	}
	if hasHead(ctx, repoPath) {
		if _, err := util.Run(ctx, repoPath, "git", "reset", "--hard", "-q", "HEAD"); err != nil {
			return commandError(op, err)
		}
	}
	_, err := util.Run(ctx, repoPath, "git", "clean", "-f", "-d", "-q")
	return commandError(op, err)
}

func (Exec) StageAll(ctx context.Context, repoPath string) error {
	const op = "stage all"
	if err := validateRepoPath(repoPath); err != nil {
		return err
	}
	_, err := util.Run(ctx, repoPath, "git", "add", "-A")
	return commandError(op, err)
}

func (Exec) UnstageAll(ctx context.Context, repoPath string) error {
	const op = "unstage all"
	if err := validateRepoPath(repoPath); err != nil {
		return err
	}
	var err error
	if hasHead(ctx, repoPath) {
		_, err = util.Run(ctx, repoPath, "git", "reset", "-q")
	} else {
		_, err = util.Run(ctx, repoPath, "git", "rm", "-r", "-q", "--cached", "--ignore-unmatch", ".")
	}
	return commandError(op, err)
}

func (Exec) CommitStaged(ctx context.Context, repoPath, message string) (string, error) {
	const op = "commit"
	if err := validateRepoPath(repoPath); err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", &CommandError{Op: op, Message: "commit message is empty"}
	}
	if _, err := util.RunWithStdin(ctx, repoPath, message, "git", "commit", "-q", "-F", "-"); err != nil {
		return "", commandError(op, err)
	}
	out, err := util.Run(ctx, repoPath, "git", "rev-parse", "HEAD")
	if err != nil {
		return "", commandError(op, err)
	}
	return strings.TrimSpace(out), nil
}

func checkWrite(op, repoPath, relPath string) error {
	if err := validateRepoPath(repoPath); err != nil {
		return err
	}
	if err := ValidateRelPath(relPath); err != nil {
		return &CommandError{Op: op, Message: err.Error(), Err: err}
	}
	return nil
}

func unstage(ctx context.Context, repoPath string, paths ...string) error {
	var args []string
	if hasHead(ctx, repoPath) {
		args = append([]string{"reset", "-q", "HEAD", "--"}, paths...)
	} else {
		args = append([]string{"rm", "-q", "--cached", "--ignore-unmatch", "--"}, paths...)
	}
	_, err := util.Run(ctx, repoPath, "git", args...)
	return err
}

func discardGroup(ctx context.Context, repoPath string, bucket Bucket, paths []string) error {
	switch bucket {
	case BucketUntracked:
		for _, p := range paths {
			if err := removeWorktreePath(repoPath, p); err != nil {
				return err
			}
		}
		return nil

	case BucketUnstaged:
		_, err := util.Run(ctx, repoPath, "git", append([]string{"checkout", "-q", "--"}, paths...)...)
		return err

	case BucketStaged:
		if err := unstage(ctx, repoPath, paths...); err != nil {
			return err
		}
		for _, p := range paths {
			// Paths newly added in the index have nothing to check out once
			// unstaged; the worktree copy goes.
			if _, err := util.Run(ctx, repoPath, "git", "checkout", "-q", "--", p); err != nil {
				if rmErr := removeWorktreePath(repoPath, p); rmErr != nil {
					return rmErr
				}
			}
		}
		return nil
	}
	return fmt.Errorf("unknown bucket %q", bucket)
}

func removeWorktreePath(repoPath, relPath string) error {
	root, err := filepath.Abs(repoPath)
	if err != nil {
		return err
	}
	full := filepath.Join(root, filepath.FromSlash(relPath))
	if rel, err := filepath.Rel(root, full); err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: %s escapes the repository", ErrInvalidPath, relPath)
	}
	if err := os.RemoveAll(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
