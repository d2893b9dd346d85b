package diffview

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func commentAt(path string, line int, side Side) func(string, int, Side) bool {
	return func(p string, l int, s Side) bool { return p == path && l == line && s == side }
}

func TestRenderSplitIncludesCursorAndCommentMarkers(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowContext, Path: "a.txt", OldLine: intPtr(1), NewLine: intPtr(1), OldText: "before", NewText: "before"},
		{Kind: RowChange, Path: "a.txt", OldLine: intPtr(2), NewLine: intPtr(2), OldText: "old", NewText: "new"},
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(3), NewText: "added"},
	}

	opts := NoSelection(1)
	opts.HasComment = commentAt("a.txt", 2, SideNew)
	out := RenderSplit(rows, 30, 30, opts)

	if len(out.OldLines) != len(rows) || len(out.NewLines) != len(rows) {
		t.Fatalf("line counts mismatch old=%d new=%d rows=%d", len(out.OldLines), len(out.NewLines), len(rows))
	}
	if !strings.HasPrefix(stripANSI(out.OldLines[1]), "▸◉ ") {
		t.Fatalf("expected cursor+comment marker on old row 1, got %q", out.OldLines[1])
	}
	if !strings.HasPrefix(stripANSI(out.NewLines[1]), "▸◉ ") {
		t.Fatalf("expected cursor+comment marker on new row 1, got %q", out.NewLines[1])
	}
	if strings.HasPrefix(stripANSI(out.NewLines[0]), "▸") {
		t.Fatalf("cursor drawn on the wrong row: %q", out.NewLines[0])
	}
	for i := range out.OldLines {
		if lipgloss.Width(out.OldLines[i]) != 30 || lipgloss.Width(out.NewLines[i]) != 30 {
			t.Fatalf("line %d not padded to width: %q / %q", i, out.OldLines[i], out.NewLines[i])
		}
	}
}

func TestRenderSplitUsesAddRemoveMarkersForSingleSidedRows(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowDelete, Path: "a.txt", OldLine: intPtr(5), OldText: "gone"},
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(8), NewText: "new"},
	}

	out := RenderSplit(rows, 40, 40, NoSelection(0))
	old0, new0 := stripANSI(out.OldLines[0]), stripANSI(out.NewLines[0])
	old1, new1 := stripANSI(out.OldLines[1]), stripANSI(out.NewLines[1])

	if !strings.Contains(old0, "-   5 gone") {
		t.Fatalf("expected removed marker in old pane, got %q", old0)
	}
	if strings.TrimSpace(new0) != "▸" {
		t.Fatalf("expected blank new-side delete row except cursor prefix, got %q", new0)
	}
	if strings.TrimSpace(old1) != "" {
		t.Fatalf("expected blank old-side add row, got %q", old1)
	}
	if !strings.Contains(new1, "+   8 new") {
		t.Fatalf("expected added marker in new pane, got %q", new1)
	}
}

func TestRenderSplitKeepsRowsAlignedWhenWrapping(t *testing.T) {
	rows := []DiffRow{
		{
			Kind:    RowChange,
			Path:    "a.txt",
			OldLine: intPtr(10),
			NewLine: intPtr(10),
			OldText: "old side has a much longer line than new side",
			NewText: "short",
		},
		{Kind: RowContext, Path: "a.txt", OldLine: intPtr(11), NewLine: intPtr(11), OldText: "next", NewText: "next"},
	}

	out := RenderSplit(rows, 20, 20, NoSelection(0))
	if len(out.RowStarts) != len(rows) || len(out.RowHeights) != len(rows) {
		t.Fatalf("unexpected row map sizes starts=%d heights=%d", len(out.RowStarts), len(out.RowHeights))
	}
	if len(out.OldLines) != len(out.NewLines) {
		t.Fatalf("old/new visual line counts differ old=%d new=%d", len(out.OldLines), len(out.NewLines))
	}
	if out.RowHeights[0] <= 1 {
		t.Fatalf("expected wrapped first row height > 1, got %d", out.RowHeights[0])
	}
	if out.RowStarts[1] != out.RowStarts[0]+out.RowHeights[0] {
		t.Fatalf("second row start misaligned: got %d want %d", out.RowStarts[1], out.RowStarts[0]+out.RowHeights[0])
	}
	if out.VisualLine(1) != out.RowStarts[1] || out.VisualLine(5) != -1 {
		t.Fatalf("VisualLine does not follow the row map")
	}
}

func TestRenderSplitExpandsTabsBeforeWrapping(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(5), NewText: "\tif len(items) > 0 {\treturn items[0]\t}"},
	}

	out := RenderSplit(rows, 24, 24, NoSelection(0))
	for i, line := range out.NewLines {
		plain := stripANSI(line)
		if strings.ContainsRune(plain, '\t') {
			t.Fatalf("new line %d still contains tab: %q", i, plain)
		}
		if lipgloss.Width(line) > 24 {
			t.Fatalf("new line %d exceeds width: %q", i, line)
		}
	}
}

func TestRenderSplitContinuationKeepsLineNumberIndent(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(12), NewText: "abcdefghijklmnopqrstuvwxyz"},
	}

	out := RenderSplit(rows, 22, 22, NoSelection(0))
	if len(out.NewLines) < 2 {
		t.Fatalf("expected wrapped output, got %d visual lines", len(out.NewLines))
	}

	// Prefix (3) + meta "+ %3d " (6): continuation text starts at column 10.
	plain := stripANSI(out.NewLines[1])
	if !strings.HasPrefix(plain, strings.Repeat(" ", 9)+"n") {
		t.Fatalf("continuation line does not keep line-number indent: %q", plain)
	}
}

func TestRenderSplitShowsNoteBelowAnchoredSide(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowChange, Path: "a.txt", OldLine: intPtr(12), NewLine: intPtr(12), OldText: "old", NewText: "new"},
	}

	opts := NoSelection(0)
	opts.HasComment = commentAt("a.txt", 12, SideNew)
	opts.Note = func(path string, line int, side Side) (string, bool) {
		return "new-side note", path == "a.txt" && line == 12 && side == SideNew
	}
	out := RenderSplit(rows, 34, 34, opts)

	if out.RowHeights[0] != 2 {
		t.Fatalf("expected note to add one visual line, got height %d", out.RowHeights[0])
	}
	if got := stripANSI(out.NewLines[1]); !strings.HasPrefix(got, strings.Repeat(" ", 9)+"new-side note") {
		t.Fatalf("expected note on new side, got %q", got)
	}
	if strings.TrimSpace(stripANSI(out.OldLines[1])) != "" {
		t.Fatalf("expected old side padded blank line, got %q", stripANSI(out.OldLines[1]))
	}
	if lipgloss.Width(out.NewLines[1]) != 34 || lipgloss.Width(out.OldLines[1]) != 34 {
		t.Fatalf("note rows not padded to width")
	}
}

func TestRenderSplitWrapsLongNoteWithoutOverflow(t *testing.T) {
	rows := []DiffRow{{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(7), NewText: "x"}}
	note := "this comment is intentionally long so wrapping has to happen and tail words are still visible"

	opts := NoSelection(0)
	opts.Note = func(string, int, Side) (string, bool) { return note, true }
	out := RenderSplit(rows, 24, 24, opts)

	if out.RowHeights[0] < 3 {
		t.Fatalf("expected wrapped note to span multiple lines, got %d", out.RowHeights[0])
	}
	joined := strings.Join(strings.Fields(strings.Join(stripANSILines(out.NewLines), " ")), "")
	if !strings.Contains(joined, strings.Join(strings.Fields(note), "")) {
		t.Fatalf("wrapped note appears truncated: %q", joined)
	}
	for i, line := range out.NewLines {
		if lipgloss.Width(line) > 24 {
			t.Fatalf("new line %d exceeds width: %q", i, line)
		}
	}
}

func TestRenderMarksSelectionRange(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(1), NewText: "a"},
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(2), NewText: "b"},
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(3), NewText: "c"},
	}

	opts := Options{Cursor: 2, SelectFrom: 2, SelectTo: 1}
	out := RenderSplit(rows, 20, 20, opts)
	want := []string{"   ", " ┃ ", "▸┃ "}
	for i, prefix := range want {
		if got := stripANSI(out.NewLines[i]); !strings.HasPrefix(got, prefix) {
			t.Fatalf("row %d = %q, want prefix %q", i, got, prefix)
		}
	}
}

func TestRenderUnifiedSplitsChangedRows(t *testing.T) {
	rows := []DiffRow{
		{Kind: RowHunkHeader, Path: "a.txt", OldText: "@@ -1,2 +1,3 @@"},
		{Kind: RowContext, Path: "a.txt", OldLine: intPtr(1), NewLine: intPtr(1), OldText: "before", NewText: "before"},
		{Kind: RowChange, Path: "a.txt", OldLine: intPtr(2), NewLine: intPtr(2), OldText: "old", NewText: "new"},
		{Kind: RowAdd, Path: "a.txt", NewLine: intPtr(3), NewText: "added"},
	}

	opts := NoSelection(2)
	opts.HasComment = commentAt("a.txt", 1, SideOld)
	out := RenderUnified(rows, 40, opts)

	if len(out.Lines) != 5 {
		t.Fatalf("expected 5 visual lines, got %d", len(out.Lines))
	}
	wantHeights := []int{1, 1, 2, 1}
	for i, h := range wantHeights {
		if out.RowHeights[i] != h {
			t.Fatalf("row %d height = %d, want %d", i, out.RowHeights[i], h)
		}
	}
	if out.RowStarts[3] != 4 {
		t.Fatalf("add row starts at %d, want 4", out.RowStarts[3])
	}

	lines := stripANSILines(out.Lines)
	if !strings.Contains(lines[0], "@@ -1,2 +1,3 @@") {
		t.Fatalf("missing hunk header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " ◉ ") || !strings.Contains(lines[1], "    1   1 before") {
		t.Fatalf("context line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "▸  ") || !strings.Contains(lines[2], "-   2     old") {
		t.Fatalf("deleted half = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "▸  ") || !strings.Contains(lines[3], "+       2 new") {
		t.Fatalf("added half = %q", lines[3])
	}
	for i, line := range out.Lines {
		if lipgloss.Width(line) != 40 {
			t.Fatalf("line %d width = %d, want 40", i, lipgloss.Width(line))
		}
	}
}

func TestSyntaxRangesForPathUsesChromaLexerByExtension(t *testing.T) {
	if ranges := syntaxRangesForPath("example.go", `if n > 10 { return "x" }`); len(ranges) == 0 {
		t.Fatalf("expected syntax ranges for Go file")
	}
	if ranges := syntaxRangesForPath("example.txt", `if n > 10 { return "x" }`); len(ranges) != 0 {
		t.Fatalf("expected no syntax ranges for text file, got %v", ranges)
	}
}

func TestSyntaxRangesForPathClassifiesKeywordAndString(t *testing.T) {
	text := `if n == 1 { return "x" }`
	ranges := syntaxRangesForPath("example.go", text)

	hasKeyword, hasString := false, false
	for _, r := range ranges {
		if r.end > len(text) || r.start >= r.end {
			t.Fatalf("range out of bounds: %+v", r)
		}
		switch r.class {
		case syntaxClassKeyword:
			hasKeyword = true
		case syntaxClassString:
			hasString = true
		}
	}
	if !hasKeyword || !hasString {
		t.Fatalf("expected keyword and string ranges, got %v", ranges)
	}
}

func TestHighlighterKeepsText(t *testing.T) {
	text := `func main() { fmt.Println("hi") } // done`
	if got := stripANSI(NewHighlighter(true).Render("main.go", text)); got != text {
		t.Fatalf("highlighting changed the text: %q", got)
	}
	if got := NewHighlighter(false).Render("main.go", text); got != text {
		t.Fatalf("disabled highlighter changed the text: %q", got)
	}
	var nilHL *Highlighter
	if got := nilHL.Render("main.go", text); got != text {
		t.Fatalf("nil highlighter changed the text: %q", got)
	}
}

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func stripANSILines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = stripANSI(l)
	}
	return out
}

func intPtr(n int) *int {
	v := n
	return &v
}
