package diffview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	// prefixWidth covers the cursor mark, the comment mark and a space.
	prefixWidth = 3
	tabWidth    = 4
)

var (
	styleAdd     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDelete  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleContext = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleHeader  = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Faint(true)
	styleCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	styleMarker  = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Italic(true)
)

// Options controls the decorations drawn around the diff text.
type Options struct {
	// Cursor is the row drawn with the cursor mark; -1 for none.
	Cursor int
	// SelectFrom and SelectTo bound the inclusive row range being picked
	// for a new comment. SelectFrom < 0 means no range.
	SelectFrom int
	SelectTo   int
	// HasComment reports whether a comment range covers line on side.
	HasComment func(path string, line int, side Side) bool
	// Note returns the text of a comment anchored at line on side. It is
	// drawn below that line.
	Note        func(path string, line int, side Side) (string, bool)
	Highlighter *Highlighter
}

// NoSelection returns Options with only the cursor set.
func NoSelection(cursor int) Options {
	return Options{Cursor: cursor, SelectFrom: -1, SelectTo: -1}
}

func (o Options) selected(i int) bool {
	if o.SelectFrom < 0 {
		return false
	}
	lo, hi := min(o.SelectFrom, o.SelectTo), max(o.SelectFrom, o.SelectTo)
	return i >= lo && i <= hi
}

func (o Options) commented(row DiffRow, side Side) bool {
	if o.HasComment == nil {
		return false
	}
	n, ok := row.Line(side)
	return ok && o.HasComment(row.Path, n, side)
}

// SplitLayout is a side-by-side rendering. Both panes have the same number
// of visual lines; row i starts at RowStarts[i] and spans RowHeights[i].
type SplitLayout struct {
	OldLines   []string
	NewLines   []string
	RowStarts  []int
	RowHeights []int
}

// UnifiedLayout is a single-column rendering with the same row map.
type UnifiedLayout struct {
	Lines      []string
	RowStarts  []int
	RowHeights []int
}

// VisualLine returns the first visual line of row, or -1.
func (l SplitLayout) VisualLine(row int) int { return visualLine(l.RowStarts, row) }

func (l UnifiedLayout) VisualLine(row int) int { return visualLine(l.RowStarts, row) }

func visualLine(starts []int, row int) int {
	if row < 0 || row >= len(starts) {
		return -1
	}
	return starts[row]
}

func RenderSplit(rows []DiffRow, oldWidth, newWidth int, opts Options) SplitLayout {
	oldWidth, newWidth = max(oldWidth, 1), max(newWidth, 1)
	oldNumW, newNumW := numberWidths(rows)

	var out SplitLayout
	for i, row := range rows {
		m := mark(i == opts.Cursor, opts.commented(row, SideOld) || opts.commented(row, SideNew), opts.selected(i))

		var oldCell, newCell []string
		if row.IsHeader() {
			oldCell = []string{header(m, row.OldText, oldWidth)}
			newCell = []string{header(m, row.OldText, newWidth)}
		} else {
			oldCell = splitCell(row, SideOld, oldWidth, oldNumW, m, opts)
			newCell = splitCell(row, SideNew, newWidth, newNumW, m, opts)
		}

		h := max(len(oldCell), len(newCell))
		out.RowStarts = append(out.RowStarts, len(out.OldLines))
		out.RowHeights = append(out.RowHeights, h)
		out.OldLines = append(out.OldLines, padLines(oldCell, h, oldWidth)...)
		out.NewLines = append(out.NewLines, padLines(newCell, h, newWidth)...)
	}
	return out
}

func splitCell(row DiffRow, side Side, width, numW int, m string, opts Options) []string {
	n, ok := row.Line(side)
	if !ok {
		return []string{fit(m+" ", width)}
	}
	sign := signFor(row.Kind, side)
	meta := fmt.Sprintf("%c %*d ", sign, numW, n)
	note, hasNote := noteFor(opts, row.Path, n, side)
	return textLines(row.Path, row.Text(side), meta, signStyle(sign), m, width, note, hasNote, opts.Highlighter)
}

// RenderUnified draws old and new content in one column. A changed row
// becomes its deleted line followed by its added line.
func RenderUnified(rows []DiffRow, width int, opts Options) UnifiedLayout {
	width = max(width, 1)
	oldNumW, newNumW := numberWidths(rows)

	var out UnifiedLayout
	for i, row := range rows {
		start := len(out.Lines)
		out.RowStarts = append(out.RowStarts, start)
		cursor, selected := i == opts.Cursor, opts.selected(i)

		if row.IsHeader() {
			out.Lines = append(out.Lines, header(mark(cursor, false, selected), row.OldText, width))
			out.RowHeights = append(out.RowHeights, 1)
			continue
		}

		emit := func(sign rune, side Side, text string) {
			commented := opts.commented(row, side)
			n, _ := row.Line(side)
			note, hasNote := noteFor(opts, row.Path, n, side)
			if row.Kind == RowContext {
				// Context lines exist on both sides.
				commented = commented || opts.commented(row, SideOld)
				if !hasNote {
					old, _ := row.Line(SideOld)
					note, hasNote = noteFor(opts, row.Path, old, SideOld)
				}
			}
			m := mark(cursor, commented, selected)
			meta := fmt.Sprintf("%c %*s %*s ", sign, oldNumW, lineLabel(row.OldLine, sign != '+'), newNumW, lineLabel(row.NewLine, sign != '-'))
			out.Lines = append(out.Lines, textLines(row.Path, text, meta, signStyle(sign), m, width, note, hasNote, opts.Highlighter)...)
		}

		switch row.Kind {
		case RowContext:
			emit(' ', SideNew, row.NewText)
		case RowDelete:
			emit('-', SideOld, row.OldText)
		case RowAdd:
			emit('+', SideNew, row.NewText)
		case RowChange:
			emit('-', SideOld, row.OldText)
			emit('+', SideNew, row.NewText)
		}
		out.RowHeights = append(out.RowHeights, len(out.Lines)-start)
	}
	return out
}

// textLines wraps text behind its meta column. Continuation lines and the
// note keep the indent of the text.
func textLines(path, text, meta string, metaStyle lipgloss.Style, m string, width int, note string, hasNote bool, hl *Highlighter) []string {
	textW := max(1, width-prefixWidth-len(meta))
	indent := strings.Repeat(" ", prefixWidth+len(meta))

	chunks := wrapHard(expandTabs(text), textW)
	lines := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		body := hl.Render(path, chunk)
		if i == 0 {
			lines = append(lines, fit(m+" "+metaStyle.Render(meta)+body, width))
			continue
		}
		lines = append(lines, fit(indent+body, width))
	}
	if hasNote {
		for _, l := range wrapWords(note, textW) {
			lines = append(lines, fit(indent+styleNote.Render(l), width))
		}
	}
	return lines
}

func header(m, text string, width int) string {
	return fit(m+" "+styleHeader.Render(ansi.Truncate(text, max(1, width-prefixWidth), "…")), width)
}

// mark is the two-cell gutter: cursor, then comment or range selection.
func mark(cursor, commented, selected bool) string {
	c := " "
	if cursor {
		c = styleCursor.Render("▸")
	}
	switch {
	case commented:
		return c + styleMarker.Render("◉")
	case selected:
		return c + styleMarker.Render("┃")
	}
	return c + " "
}

func noteFor(opts Options, path string, line int, side Side) (string, bool) {
	if opts.Note == nil || line <= 0 {
		return "", false
	}
	return opts.Note(path, line, side)
}

func signFor(kind RowKind, side Side) rune {
	switch {
	case side == SideOld && (kind == RowDelete || kind == RowChange):
		return '-'
	case side == SideNew && (kind == RowAdd || kind == RowChange):
		return '+'
	}
	return ' '
}

func signStyle(sign rune) lipgloss.Style {
	switch sign {
	case '+':
		return styleAdd
	case '-':
		return styleDelete
	}
	return styleContext
}

func lineLabel(n *int, show bool) string {
	if n == nil || !show {
		return ""
	}
	return strconv.Itoa(*n)
}

func numberWidths(rows []DiffRow) (int, int) {
	maxOld, maxNew := 0, 0
	for _, row := range rows {
		if row.OldLine != nil {
			maxOld = max(maxOld, *row.OldLine)
		}
		if row.NewLine != nil {
			maxNew = max(maxNew, *row.NewLine)
		}
	}
	return max(3, digits(maxOld)), max(3, digits(maxNew))
}

func expandTabs(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += ansi.StringWidth(string(r))
	}
	return b.String()
}

func wrapHard(s string, width int) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(ansi.Hardwrap(s, width, true), "\n")
}

func wrapWords(s string, width int) []string {
	return strings.Split(ansi.Wrap(s, width, ""), "\n")
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

func padLines(lines []string, height, width int) []string {
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return lines
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
