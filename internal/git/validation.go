package git

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var commitIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

func validateRepoPath(repoPath string) error {
	if strings.TrimSpace(repoPath) == "" {
		return &CommandError{Op: "repo", Message: "repository path is empty", Err: ErrInvalidPath}
	}
	return nil
}

// ValidateRelPath rejects empty, absolute and parent-escaping paths.
func ValidateRelPath(relPath string) error {
	if relPath == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidPath)
	}
	if strings.ContainsRune(relPath, '\x00') {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}
	if filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") {
		return fmt.Errorf("%w: path must be repository-relative", ErrInvalidPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if part == ".." {
			return fmt.Errorf("%w: path cannot contain '..'", ErrInvalidPath)
		}
	}
	return nil
}

// ValidateCommitID accepts abbreviated and full hex object names.
func ValidateCommitID(commitID string) error {
	if !commitIDRegex.MatchString(strings.TrimSpace(commitID)) {
		return fmt.Errorf("invalid commit id: %s", commitID)
	}
	return nil
}
