// Package navigation rebuilds the row lists the UI renders and moves the
// cursor over them. Pointer and keyboard input resolve to the same rows.
package navigation

import (
	"strings"

	"stagehand/internal/git"
	"stagehand/internal/selection"
)

// Row is one visible file row: the item tagged with the bucket it sits in.
type Row struct {
	Bucket git.Bucket
	Item   git.FileItem
}

func (r Row) File() selection.SelectedFile {
	return selection.SelectedFile{Bucket: r.Bucket, Path: r.Item.Path}
}

// FileRows lists changes-mode rows in display order: staged first, then the
// unstaged and untracked rows of the changes section. Collapsed sections
// contribute nothing.
func FileRows(snap git.Snapshot, stagedCollapsed, changesCollapsed bool) []Row {
	var rows []Row
	if !stagedCollapsed {
		rows = appendRows(rows, git.BucketStaged, snap.Staged)
	}
	if !changesCollapsed {
		rows = appendRows(rows, git.BucketUnstaged, snap.Unstaged)
		rows = appendRows(rows, git.BucketUntracked, snap.Untracked)
	}
	return rows
}

// ChangedRows is the unstaged plus untracked list, ignoring collapse state.
func ChangedRows(snap git.Snapshot) []Row {
	rows := appendRows(nil, git.BucketUnstaged, snap.Unstaged)
	return appendRows(rows, git.BucketUntracked, snap.Untracked)
}

func appendRows(rows []Row, b git.Bucket, items []git.FileItem) []Row {
	for _, item := range items {
		rows = append(rows, Row{Bucket: b, Item: item})
	}
	return rows
}

// FilterCommits keeps commits whose summary, ids or author contain filter,
// ignoring case. A blank filter keeps everything.
func FilterCommits(commits []git.HistoryCommit, filter string) []git.HistoryCommit {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return commits
	}
	var out []git.HistoryCommit
	for _, c := range commits {
		for _, field := range []string{c.Summary, c.ShortID, c.CommitID, c.Author} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func IndexOfFile(rows []Row, f selection.SelectedFile) int {
	for i, r := range rows {
		if r.Bucket == f.Bucket && r.Item.Path == f.Path {
			return i
		}
	}
	return -1
}

func IndexOfCommit(commits []git.HistoryCommit, id string) int {
	if id == "" {
		return -1
	}
	for i, c := range commits {
		if c.CommitID == id {
			return i
		}
	}
	return -1
}

func IndexOfPath(items []git.FileItem, path string) int {
	if path == "" {
		return -1
	}
	for i, item := range items {
		if item.Path == path {
			return i
		}
	}
	return -1
}
