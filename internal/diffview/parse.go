package diffview

import (
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"stagehand/internal/git"
)

// FromVersions builds the rows for a file-content pair. The patch git
// reported is preferred; without one the two sides are laid against each
// other whole.
func FromVersions(v git.FileVersions) ([]DiffRow, error) {
	if strings.TrimSpace(v.Patch) != "" {
		return ParseUnifiedDiff([]byte(v.Patch))
	}
	if v.OldFile == nil && v.NewFile == nil {
		return nil, nil
	}

	var oldText, newText, path string
	if v.OldFile != nil {
		oldText, path = v.OldFile.Contents, v.OldFile.Name
	}
	if v.NewFile != nil {
		newText, path = v.NewFile.Contents, v.NewFile.Name
	}
	oldLines, newLines := splitContents(oldText), splitContents(newText)
	if len(oldLines) == 0 && len(newLines) == 0 {
		return nil, nil
	}

	rows := []DiffRow{{
		Kind:    RowHunkHeader,
		OldText: fmt.Sprintf("@@ -%d,%d +%d,%d @@", min(1, len(oldLines)), len(oldLines), min(1, len(newLines)), len(newLines)),
		Path:    path,
	}}
	oldLn, newLn := 1, 1
	if oldText == newText {
		for _, line := range oldLines {
			rows = append(rows, DiffRow{
				Kind:    RowContext,
				OldLine: linePtr(oldLn),
				NewLine: linePtr(newLn),
				OldText: line,
				NewText: line,
				Path:    path,
			})
			oldLn++
			newLn++
		}
		return rows, nil
	}
	return append(rows, pairEditRuns(path, 0, &oldLn, &newLn, oldLines, newLines)...), nil
}

func ParseUnifiedDiff(raw []byte) ([]DiffRow, error) {
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, err
	}

	rows := make([]DiffRow, 0, 64)
	for _, fd := range fileDiffs {
		path := normalizePath(fd)
		for hunkID, h := range fd.Hunks {
			rows = append(rows, DiffRow{
				Kind:    RowHunkHeader,
				OldText: formatHunkHeader(h),
				Path:    path,
				HunkID:  hunkID,
			})

			oldLn := int(h.OrigStartLine)
			newLn := int(h.NewStartLine)
			lines := splitHunkBody(h.Body)
			for i := 0; i < len(lines); {
				line := lines[i]
				if line == "" {
					i++
					continue
				}
				switch line[0] {
				case ' ':
					rows = append(rows, DiffRow{
						Kind:    RowContext,
						OldLine: linePtr(oldLn),
						NewLine: linePtr(newLn),
						OldText: line[1:],
						NewText: line[1:],
						Path:    path,
						HunkID:  hunkID,
					})
					oldLn++
					newLn++
					i++

				case '-':
					start := i
					for i < len(lines) && len(lines[i]) > 0 && lines[i][0] == '-' {
						i++
					}
					delRun := stripPrefix(lines[start:i])

					addStart := i
					for i < len(lines) && len(lines[i]) > 0 && lines[i][0] == '+' {
						i++
					}
					addRun := stripPrefix(lines[addStart:i])

					rows = append(rows, pairEditRuns(path, hunkID, &oldLn, &newLn, delRun, addRun)...)

				case '+':
					start := i
					for i < len(lines) && len(lines[i]) > 0 && lines[i][0] == '+' {
						i++
					}
					addRun := stripPrefix(lines[start:i])
					rows = append(rows, pairEditRuns(path, hunkID, &oldLn, &newLn, nil, addRun)...)

				case '\\':
					// "\ No newline at end of file"
					i++

				default:
					return nil, fmt.Errorf("unexpected hunk line prefix %q", line)
				}
			}
		}
	}
	return rows, nil
}

func pairEditRuns(path string, hunkID int, oldLn, newLn *int, dels, adds []string) []DiffRow {
	count := max(len(dels), len(adds))
	out := make([]DiffRow, 0, count)
	for i := 0; i < count; i++ {
		row := DiffRow{Path: path, HunkID: hunkID}
		hasDel := i < len(dels)
		hasAdd := i < len(adds)

		if hasDel {
			row.OldLine = linePtr(*oldLn)
			row.OldText = dels[i]
			*oldLn++
		}
		if hasAdd {
			row.NewLine = linePtr(*newLn)
			row.NewText = adds[i]
			*newLn++
		}

		switch {
		case hasDel && hasAdd:
			row.Kind = RowChange
		case hasDel:
			row.Kind = RowDelete
		default:
			row.Kind = RowAdd
		}
		out = append(out, row)
	}
	return out
}

func formatHunkHeader(h *sgdiff.Hunk) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
	if h.Section != "" {
		header += " " + h.Section
	}
	return header
}

func normalizePath(fd *sgdiff.FileDiff) string {
	path := fd.NewName
	if path == "" || path == "/dev/null" {
		path = fd.OrigName
	}
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")
	return path
}

func splitHunkBody(body []byte) []string {
	return splitContents(string(body))
}

func splitContents(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func stripPrefix(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			out = append(out, "")
			continue
		}
		out = append(out, line[1:])
	}
	return out
}

func linePtr(n int) *int {
	v := n
	return &v
}
