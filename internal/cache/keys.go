package cache

import (
	"strings"

	"stagehand/internal/git"
)

const sep = "\x00"

const (
	kindSnapshot       = "snapshot"
	kindHistory        = "history"
	kindCommitFiles    = "commit-files"
	kindCommitVersions = "commit-versions"
	kindFileVersions   = "file-versions"
)

func key(kind string, parts ...string) string {
	return kind + sep + strings.Join(parts, sep)
}

func kindOf(k string) string {
	kind, _, _ := strings.Cut(k, sep)
	return kind
}

// pinned entries live outside the LRU; there is one per open repository.
func pinned(k string) bool {
	switch kindOf(k) {
	case kindSnapshot, kindHistory:
		return true
	}
	return false
}

func SnapshotKey(repo string) string { return key(kindSnapshot, repo) }

func HistoryKey(repo string) string { return key(kindHistory, repo) }

func CommitFilesKey(repo, commitID string) string { return key(kindCommitFiles, repo, commitID) }

func CommitVersionsKey(repo, commitID, relPath, previousPath string) string {
	return key(kindCommitVersions, repo, commitID, relPath, previousPath)
}

func FileVersionsKey(repo string, bucket git.Bucket, relPath string) string {
	return key(kindFileVersions, repo, string(bucket), relPath)
}

// Invalidation tags.

func TagRepo(repo string) string { return "repo:" + repo }

func TagSnapshot(repo string) string { return "snapshot:" + repo }

func TagHistory(repo string) string { return "history:" + repo }

// TagCommit covers the file list and contents of one commit.
func TagCommit(repo, commitID string) string { return "commit:" + repo + sep + commitID }

// TagWorktree covers every working-tree version entry of the repository.
func TagWorktree(repo string) string { return "worktree:" + repo }

// TagFile covers every working-tree version entry of one path.
func TagFile(repo, relPath string) string { return "file:" + repo + sep + relPath }
