package git

import (
	"context"
	"fmt"
)

// Bucket is one of the three working-tree groupings a changed file can sit in.
type Bucket string

const (
	BucketUnstaged  Bucket = "unstaged"
	BucketStaged    Bucket = "staged"
	BucketUntracked Bucket = "untracked"
)

// ParseBucket accepts the lowercase bucket names.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case BucketUnstaged, BucketStaged, BucketUntracked:
		return b, nil
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}

func (b Bucket) String() string { return string(b) }

// Status labels reported for a changed file.
const (
	StatusAdded       = "added"
	StatusDeleted     = "deleted"
	StatusModified    = "modified"
	StatusRenamed     = "renamed"
	StatusCopied      = "copied"
	StatusTypeChanged = "type-changed"
	StatusUnmerged    = "unmerged"
	StatusUntracked   = "untracked"
)

// StatusLetter is the one-column code shown for a status label.
func StatusLetter(status string) string {
	switch status {
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	case StatusModified:
		return "M"
	case StatusRenamed:
		return "R"
	case StatusCopied:
		return "C"
	case StatusTypeChanged:
		return "T"
	case StatusUnmerged:
		return "U"
	case StatusUntracked:
		return "?"
	}
	return "·"
}

// FileItem is one changed file inside a snapshot bucket or a commit.
type FileItem struct {
	Path         string `json:"path"`
	Status       string `json:"status"`
	PreviousPath string `json:"previousPath,omitempty"`
}

// Snapshot is the working-tree state of one repository.
type Snapshot struct {
	RepoRoot  string     `json:"repoRoot"`
	Branch    string     `json:"branch"`
	Unstaged  []FileItem `json:"unstaged"`
	Staged    []FileItem `json:"staged"`
	Untracked []FileItem `json:"untracked"`
}

// Items returns the files of one bucket.
func (s Snapshot) Items(b Bucket) []FileItem {
	switch b {
	case BucketUnstaged:
		return s.Unstaged
	case BucketStaged:
		return s.Staged
	case BucketUntracked:
		return s.Untracked
	}
	return nil
}

// Contains reports whether path is listed in bucket b.
func (s Snapshot) Contains(b Bucket, path string) bool {
	for _, item := range s.Items(b) {
		if item.Path == path {
			return true
		}
	}
	return false
}

// Locate returns the first bucket containing path, checked in the order
// unstaged, staged, untracked.
func (s Snapshot) Locate(path string) (Bucket, bool) {
	for _, b := range []Bucket{BucketUnstaged, BucketStaged, BucketUntracked} {
		if s.Contains(b, path) {
			return b, true
		}
	}
	return "", false
}

// HistoryCommit is one entry of the newest-first commit list.
type HistoryCommit struct {
	CommitID     string `json:"commitId"`
	ShortID      string `json:"shortId"`
	Summary      string `json:"summary"`
	Author       string `json:"author"`
	RelativeTime string `json:"relativeTime"`
}

// DiffFile is one side of a file-content pair.
type DiffFile struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// FileVersions holds the old and new contents of a file. Either side may be
// absent. Patch is the unified diff git reports for the same pair.
type FileVersions struct {
	OldFile *DiffFile `json:"oldFile,omitempty"`
	NewFile *DiffFile `json:"newFile,omitempty"`
	Patch   string    `json:"patch,omitempty"`
}

// PathChange addresses one file for a batch discard.
type PathChange struct {
	RelPath string `json:"relPath"`
	Bucket  Bucket `json:"bucket"`
}

// Service is the git command layer the client talks to. Every call may
// fail with a *CommandError.
type Service interface {
	Snapshot(ctx context.Context, repoPath string) (Snapshot, error)
	CommitHistory(ctx context.Context, repoPath string, limit int) ([]HistoryCommit, error)
	CommitFiles(ctx context.Context, repoPath, commitID string) ([]FileItem, error)
	CommitFileVersions(ctx context.Context, repoPath, commitID, relPath, previousPath string) (FileVersions, error)
	FileVersions(ctx context.Context, repoPath string, bucket Bucket, relPath string) (FileVersions, error)

	StageFile(ctx context.Context, repoPath, relPath string) error
	UnstageFile(ctx context.Context, repoPath, relPath string) error
	DiscardFile(ctx context.Context, repoPath, relPath string, bucket Bucket) error
	DiscardFiles(ctx context.Context, repoPath string, files []PathChange) error
	DiscardAll(ctx context.Context, repoPath string) error
	StageAll(ctx context.Context, repoPath string) error
	UnstageAll(ctx context.Context, repoPath string) error
	CommitStaged(ctx context.Context, repoPath, message string) (string, error)
}
