package git

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"stagehand/internal/util"
)

func (Exec) Snapshot(ctx context.Context, repoPath string) (Snapshot, error) {
	if err := validateRepoPath(repoPath); err != nil {
		return Snapshot{}, err
	}

	root, err := DiscoverRepoRoot(ctx, repoPath)
	if err != nil {
		return Snapshot{}, err
	}

	out, err := util.RunOutput(ctx, root, "git", "status", "--porcelain=v2", "--branch", "--untracked-files=all", "-z")
	if err != nil {
		return Snapshot{}, commandError("get snapshot", err)
	}

	snap, err := parsePorcelainV2Z(out)
	if err != nil {
		return Snapshot{}, commandError("get snapshot", err)
	}
	snap.RepoRoot = root
	return snap, nil
}

func parsePorcelainV2Z(data []byte) (Snapshot, error) {
	snap := Snapshot{
		Branch:    "HEAD",
		Unstaged:  []FileItem{},
		Staged:    []FileItem{},
		Untracked: []FileItem{},
	}
	records := bytes.Split(data, []byte{0})

	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if rec == "" {
			continue
		}

		switch rec[0] {
		case '#':
			if head, ok := strings.CutPrefix(rec, "# branch.head "); ok && head != "(detached)" {
				snap.Branch = head
			}

		case '1':
			fields := strings.SplitN(rec, " ", 9)
			if len(fields) < 9 {
				return Snapshot{}, fmt.Errorf("unexpected porcelain record: %q", rec)
			}
			addTracked(&snap, fields[1], fields[8], "", false)

		case '2':
			fields := strings.SplitN(rec, " ", 10)
			if len(fields) < 10 {
				return Snapshot{}, fmt.Errorf("unexpected rename/copy record: %q", rec)
			}
			prev := ""
			if i+1 < len(records) {
				i++ // consume the original path record emitted for -z rename/copy entries
				prev = string(records[i])
			}
			addTracked(&snap, fields[1], fields[9], prev, false)

		case 'u':
			fields := strings.SplitN(rec, " ", 11)
			if len(fields) < 11 {
				return Snapshot{}, fmt.Errorf("unexpected unmerged record: %q", rec)
			}
			addTracked(&snap, fields[1], fields[10], "", true)

		case '?':
			snap.Untracked = append(snap.Untracked, FileItem{
				Path:   strings.TrimPrefix(rec, "? "),
				Status: StatusUntracked,
			})

		case '!':
			continue

		default:
			return Snapshot{}, fmt.Errorf("unknown porcelain record: %q", rec)
		}
	}

	sortItems(snap.Unstaged)
	sortItems(snap.Staged)
	sortItems(snap.Untracked)
	return snap, nil
}

func addTracked(snap *Snapshot, xy, path, prev string, unmerged bool) {
	if len(xy) < 2 {
		xy += ".."
	}
	if unmerged {
		item := FileItem{Path: path, Status: StatusUnmerged}
		snap.Staged = append(snap.Staged, item)
		snap.Unstaged = append(snap.Unstaged, item)
		return
	}
	if xy[0] != '.' {
		snap.Staged = append(snap.Staged, FileItem{Path: path, Status: statusLabel(xy[0]), PreviousPath: prev})
	}
	if xy[1] != '.' {
		item := FileItem{Path: path, Status: statusLabel(xy[1])}
		if xy[1] == 'R' || xy[1] == 'C' {
			item.PreviousPath = prev
		}
		snap.Unstaged = append(snap.Unstaged, item)
	}
}

func statusLabel(code byte) string {
	switch code {
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	case 'C':
		return StatusCopied
	case 'T':
		return StatusTypeChanged
	case 'U':
		return StatusUnmerged
	}
	return StatusModified
}

func sortItems(items []FileItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
}
