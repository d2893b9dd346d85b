package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"stagehand/internal/util"
)

func (Exec) FileVersions(ctx context.Context, repoPath string, bucket Bucket, relPath string) (FileVersions, error) {
	const op = "get file versions"
	if err := validateRepoPath(repoPath); err != nil {
		return FileVersions{}, err
	}
	if err := ValidateRelPath(relPath); err != nil {
		return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
	}

	var (
		oldBytes, newBytes []byte
		err                error
		patch              string
	)
	switch bucket {
	case BucketUnstaged:
		if oldBytes, err = readBlob(ctx, repoPath, ":"+relPath); err != nil {
			return FileVersions{}, commandError(op, err)
		}
		if newBytes, err = readWorktreeFile(repoPath, relPath); err != nil {
			return FileVersions{}, commandError(op, err)
		}
		patch, err = diffText(ctx, repoPath, "diff", "--no-color", "--", relPath)
	case BucketStaged:
		if hasHead(ctx, repoPath) {
			if oldBytes, err = readBlob(ctx, repoPath, "HEAD:"+relPath); err != nil {
				return FileVersions{}, commandError(op, err)
			}
		}
		if newBytes, err = readBlob(ctx, repoPath, ":"+relPath); err != nil {
			return FileVersions{}, commandError(op, err)
		}
		patch, err = diffText(ctx, repoPath, "diff", "--cached", "--no-color", "--", relPath)
	case BucketUntracked:
		if newBytes, err = readWorktreeFile(repoPath, relPath); err != nil {
			return FileVersions{}, commandError(op, err)
		}
		patch, err = diffText(ctx, repoPath, "diff", "--no-index", "--no-color", "--", os.DevNull, relPath)
	default:
		err = fmt.Errorf("unknown bucket %q", bucket)
	}
	if err != nil {
		return FileVersions{}, commandError(op, err)
	}

	return buildVersions(op, relPath, relPath, oldBytes, newBytes, patch)
}

func (Exec) CommitFileVersions(ctx context.Context, repoPath, commitID, relPath, previousPath string) (FileVersions, error) {
	const op = "get commit file versions"
	if err := validateRepoPath(repoPath); err != nil {
		return FileVersions{}, err
	}
	if err := ValidateRelPath(relPath); err != nil {
		return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
	}
	if previousPath != "" {
		if err := ValidateRelPath(previousPath); err != nil {
			return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
		}
	}
	if err := ValidateCommitID(commitID); err != nil {
		return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
	}

	oldPath := relPath
	if previousPath != "" {
		oldPath = previousPath
	}

	var oldBytes []byte
	if hasParent(ctx, repoPath, commitID) {
		b, err := readBlob(ctx, repoPath, commitID+"^:"+oldPath)
		if err != nil {
			return FileVersions{}, commandError(op, err)
		}
		oldBytes = b
	}
	newBytes, err := readBlob(ctx, repoPath, commitID+":"+relPath)
	if err != nil {
		return FileVersions{}, commandError(op, err)
	}

	args := []string{"show", "--no-color", "--format=", "-M", commitID, "--", relPath}
	if previousPath != "" {
		args = append(args, previousPath)
	}
	patch, err := diffText(ctx, repoPath, args...)
	if err != nil {
		return FileVersions{}, commandError(op, err)
	}

	return buildVersions(op, oldPath, relPath, oldBytes, newBytes, patch)
}

func buildVersions(op, oldName, newName string, oldBytes, newBytes []byte, patch string) (FileVersions, error) {
	out := FileVersions{Patch: patch}
	if oldBytes != nil {
		f, err := toDiffFile(oldName, oldBytes)
		if err != nil {
			return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
		}
		out.OldFile = f
	}
	if newBytes != nil {
		f, err := toDiffFile(newName, newBytes)
		if err != nil {
			return FileVersions{}, &CommandError{Op: op, Message: err.Error(), Err: err}
		}
		out.NewFile = f
	}
	return out, nil
}

func toDiffFile(name string, data []byte) (*DiffFile, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("binary file is not supported: %s", name)
	}
	return &DiffFile{Name: name, Contents: string(data)}, nil
}

// readBlob returns nil, nil when the object does not exist.
func readBlob(ctx context.Context, repoPath, rev string) ([]byte, error) {
	if _, err := util.RunOutput(ctx, repoPath, "git", "cat-file", "-e", rev); err != nil {
		var runErr *util.RunError
		if errors.As(err, &runErr) && runErr.ExitCode > 0 {
			return nil, nil
		}
		return nil, err
	}
	out, err := util.RunOutput(ctx, repoPath, "git", "cat-file", "blob", rev)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func readWorktreeFile(repoPath, relPath string) ([]byte, error) {
	full := filepath.Join(repoPath, filepath.FromSlash(relPath))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func hasParent(ctx context.Context, repoPath, commitID string) bool {
	_, err := util.RunOutput(ctx, repoPath, "git", "rev-parse", "--verify", "-q", commitID+"^")
	return err == nil
}

// diffText runs a git diff-like command. --no-index returns exit code 1 when
// a diff exists, so that code is not a failure.
func diffText(ctx context.Context, repoPath string, args ...string) (string, error) {
	out, err := util.RunOutput(ctx, repoPath, "git", args...)
	if err == nil {
		return string(out), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return string(out), nil
	}
	return "", err
}
