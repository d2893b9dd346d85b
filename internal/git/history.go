package git

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stagehand/internal/util"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "--format=%H%x1f%h%x1f%s%x1f%an%x1f%ct%x1e"
)

func (e Exec) CommitHistory(ctx context.Context, repoPath string, limit int) ([]HistoryCommit, error) {
	if err := validateRepoPath(repoPath); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}
	if !hasHead(ctx, repoPath) {
		return []HistoryCommit{}, nil
	}

	out, err := util.RunOutput(ctx, repoPath, "git", "log", "-n", strconv.Itoa(limit), "--abbrev=7", logFormat)
	if err != nil {
		return nil, commandError("get commit history", err)
	}
	return parseLog(out, e.now())
}

func parseLog(data []byte, now time.Time) ([]HistoryCommit, error) {
	commits := []HistoryCommit{}
	for _, rec := range strings.Split(string(data), recordSep) {
		rec = strings.TrimLeft(rec, "\n")
		if rec == "" {
			continue
		}
		fields := strings.Split(rec, fieldSep)
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected log record: %q", rec)
		}
		secs, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse commit time %q: %w", fields[4], err)
		}
		author := fields[3]
		if author == "" {
			author = "Unknown"
		}
		short := fields[1]
		if len(short) > 7 {
			short = short[:7]
		}
		commits = append(commits, HistoryCommit{
			CommitID:     fields[0],
			ShortID:      short,
			Summary:      fields[2],
			Author:       author,
			RelativeTime: relativeTime(time.Unix(secs, 0), now),
		})
	}
	return commits, nil
}

func relativeTime(then, now time.Time) string {
	if then.After(now) {
		return "in the future"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

func (Exec) CommitFiles(ctx context.Context, repoPath, commitID string) ([]FileItem, error) {
	if err := validateRepoPath(repoPath); err != nil {
		return nil, err
	}
	if err := ValidateCommitID(commitID); err != nil {
		return nil, &CommandError{Op: "get commit files", Message: err.Error(), Err: err}
	}

	out, err := util.RunOutput(ctx, repoPath, "git", "diff-tree", "--no-commit-id", "-r", "-M", "-C", "--root", "-z", "--name-status", commitID)
	if err != nil {
		return nil, commandError("get commit files", err)
	}
	files, err := parseNameStatusZ(out)
	if err != nil {
		return nil, commandError("get commit files", err)
	}
	return files, nil
}

func parseNameStatusZ(data []byte) ([]FileItem, error) {
	fields := bytes.Split(data, []byte{0})
	files := []FileItem{}
	for i := 0; i < len(fields); i++ {
		code := string(fields[i])
		if code == "" {
			continue
		}
		switch code[0] {
		case 'R', 'C':
			if i+2 >= len(fields) {
				return nil, fmt.Errorf("truncated rename record %q", code)
			}
			prev := string(fields[i+1])
			path := string(fields[i+2])
			i += 2
			files = append(files, FileItem{Path: path, Status: statusLabel(code[0]), PreviousPath: prev})
		default:
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("truncated status record %q", code)
			}
			i++
			files = append(files, FileItem{Path: string(fields[i]), Status: statusLabel(code[0])})
		}
	}
	sortItems(files)
	return files, nil
}
