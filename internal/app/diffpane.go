package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"stagehand/internal/comments"
	"stagehand/internal/diffview"
	"stagehand/internal/git"
	"stagehand/internal/selection"
)

type diffPaneMode int

const (
	diffPaneModeSplit diffPaneMode = iota
	diffPaneModeNewOnly
	diffPaneModeOldOnly
	diffPaneModeUnified
)

// setDiff replaces the rendered file. The cursor starts on the first
// content row.
func (m *Model) setDiff(v *git.FileVersions) {
	m.diffFor = v
	m.diffRows = nil
	m.diffErr = nil
	m.rangeFrom = -1
	m.rowStarts = nil
	m.rowHeights = nil
	m.oldView.GotoTop()
	m.newView.GotoTop()
	if v != nil {
		rows, err := diffview.FromVersions(*v)
		m.diffRows, m.diffErr = rows, err
	}
	m.diffCursor = diffview.FirstContentRow(m.diffRows)
	m.diffDirty = true
}

// sameVersions reports whether two views carry the same loaded diff. A
// view copies the struct but shares the file pointers.
func sameVersions(a, b *git.FileVersions) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (m Model) diffPaneMode() diffPaneMode {
	if m.state.DiffStyle == selection.DiffUnified {
		return diffPaneModeUnified
	}
	hasOld, hasNew := false, false
	for _, row := range m.diffRows {
		if row.IsHeader() {
			continue
		}
		hasOld = hasOld || row.OldLine != nil
		hasNew = hasNew || row.NewLine != nil
	}
	switch {
	case hasNew && !hasOld:
		return diffPaneModeNewOnly
	case hasOld && !hasNew:
		return diffPaneModeOldOnly
	}
	return diffPaneModeSplit
}

// diffSidePaneWidths splits the diff area between the old and new panes.
// A zero width hides that pane.
func (m Model) diffSidePaneWidths(total int) (int, int) {
	switch m.diffPaneMode() {
	case diffPaneModeNewOnly, diffPaneModeUnified:
		return 0, max(1, total)
	case diffPaneModeOldOnly:
		return max(1, total), 0
	}
	return splitRightPanes(total)
}

func (m *Model) refreshDiffContent() {
	if len(m.diffRows) == 0 {
		msg := m.emptyDiffText()
		m.oldView.SetContent(msg)
		m.newView.SetContent(msg)
		m.rowStarts, m.rowHeights = nil, nil
		m.diffDirty = false
		return
	}
	m.clampDiffCursor()
	if !m.diffDirty && m.oldWidth == m.oldView.Width && m.newWidth == m.newView.Width {
		m.ensureCursorVisible()
		return
	}

	opts := m.renderOptions()
	switch m.diffPaneMode() {
	case diffPaneModeUnified:
		out := diffview.RenderUnified(m.diffRows, m.newView.Width, opts)
		m.newView.SetContent(strings.Join(out.Lines, "\n"))
		m.oldView.SetContent("")
		m.rowStarts, m.rowHeights = out.RowStarts, out.RowHeights
	case diffPaneModeNewOnly:
		out := diffview.RenderSplit(m.diffRows, 1, m.newView.Width, opts)
		m.newView.SetContent(strings.Join(out.NewLines, "\n"))
		m.oldView.SetContent("")
		m.rowStarts, m.rowHeights = out.RowStarts, out.RowHeights
	case diffPaneModeOldOnly:
		out := diffview.RenderSplit(m.diffRows, m.oldView.Width, 1, opts)
		m.oldView.SetContent(strings.Join(out.OldLines, "\n"))
		m.newView.SetContent("")
		m.rowStarts, m.rowHeights = out.RowStarts, out.RowHeights
	default:
		out := diffview.RenderSplit(m.diffRows, m.oldView.Width, m.newView.Width, opts)
		m.oldView.SetContent(strings.Join(out.OldLines, "\n"))
		m.newView.SetContent(strings.Join(out.NewLines, "\n"))
		m.rowStarts, m.rowHeights = out.RowStarts, out.RowHeights
	}
	m.oldWidth = m.oldView.Width
	m.newWidth = m.newView.Width
	m.diffDirty = false
	m.ensureCursorVisible()
}

func (m Model) emptyDiffText() string {
	switch {
	case m.diffErr != nil:
		return "Failed to read diff: " + m.diffErr.Error()
	case m.state.ActiveRepo == "":
		return "No repository open."
	case m.state.ActivePath == "":
		return "Select a file to see its diff."
	case m.diffFor == nil:
		return "Loading diff..."
	}
	return "No textual changes in " + m.state.ActivePath + "."
}

func (m Model) renderOptions() diffview.Options {
	opts := diffview.NoSelection(m.diffCursor)
	if m.focus != focusDiff && !m.commentActive {
		opts.Cursor = -1
	}
	if m.rangeFrom >= 0 {
		opts.SelectFrom, opts.SelectTo = m.rangeFrom, m.diffCursor
	}
	notes := m.fileNotes
	annotations := m.annotations
	opts.HasComment = func(_ string, line int, side diffview.Side) bool {
		cs := commentSide(side)
		for _, c := range notes {
			if covers(c, line, cs) {
				return true
			}
		}
		return false
	}
	opts.Note = func(_ string, line int, side diffview.Side) (string, bool) {
		cs := commentSide(side)
		var texts []string
		for _, a := range annotations {
			if a.Line == line && a.Side == cs {
				texts = append(texts, a.Text)
			}
		}
		if len(texts) == 0 {
			return "", false
		}
		return "» " + strings.Join(texts, " · "), true
	}
	opts.Highlighter = m.highlight
	return opts
}

func commentSide(s diffview.Side) comments.Side {
	if s == diffview.SideOld {
		return comments.SideDeletions
	}
	return comments.SideAdditions
}

// covers reports whether c spans line on side. A range crossing sides
// only marks its two endpoints.
func covers(c comments.Comment, line int, side comments.Side) bool {
	if c.EndSide == "" || c.EndSide == c.Side {
		return side == c.Side && line >= c.StartLine && line <= c.EndLine
	}
	return (side == c.Side && line == c.StartLine) || (side == c.EndSide && line == c.EndLine)
}

// pickAnchor is the line a comment on row attaches to: the new side when
// there is one, otherwise the old side.
func pickAnchor(row diffview.DiffRow) (comments.Side, int, bool) {
	if row.IsHeader() {
		return "", 0, false
	}
	if row.Kind != diffview.RowDelete {
		if n, ok := row.Line(diffview.SideNew); ok {
			return comments.SideAdditions, n, true
		}
	}
	if n, ok := row.Line(diffview.SideOld); ok {
		return comments.SideDeletions, n, true
	}
	return "", 0, false
}

// rangeForRows builds a comment range over rows lo..hi, skipping hunk
// headers at either end.
func rangeForRows(rows []diffview.DiffRow, lo, hi int) (comments.Range, bool) {
	if lo > hi {
		lo, hi = hi, lo
	}
	lo, hi = max(lo, 0), min(hi, len(rows)-1)
	for lo <= hi && rows[lo].IsHeader() {
		lo++
	}
	for hi >= lo && rows[hi].IsHeader() {
		hi--
	}
	if lo > hi {
		return comments.Range{}, false
	}
	startSide, start, _ := pickAnchor(rows[lo])
	endSide, end, _ := pickAnchor(rows[hi])
	return comments.Range{Start: start, End: end, Side: startSide, EndSide: endSide}, true
}

func (m *Model) startComment() tea.Cmd {
	if len(m.diffRows) == 0 || m.state.ActivePath == "" {
		m.setAlert("Open a file to comment on it.")
		return nil
	}
	from := m.diffCursor
	if m.rangeFrom >= 0 {
		from = m.rangeFrom
	}
	r, ok := rangeForRows(m.diffRows, from, m.diffCursor)
	if !ok {
		m.setAlert("Move the cursor to a line to comment on it.")
		return nil
	}
	m.commentRange = r
	m.commentEditID = ""
	m.commentErr = ""
	m.commentActive = true
	m.commentInput.SetValue("")
	cmd := m.commentInput.Focus()
	m.layout()
	return cmd
}

func (m *Model) startCommentEdit() tea.Cmd {
	c, ok := m.commentAtCursor()
	if !ok {
		m.setAlert("No comment on this line.")
		return nil
	}
	m.commentEditID = c.ID
	m.commentRange = comments.Range{Start: c.StartLine, End: c.EndLine, Side: c.Side, EndSide: c.EndSide}
	m.commentErr = ""
	m.commentActive = true
	m.commentInput.SetValue(c.Text)
	m.commentInput.CursorEnd()
	cmd := m.commentInput.Focus()
	m.layout()
	return cmd
}

func (m *Model) saveCommentInput() tea.Cmd {
	text := strings.TrimSpace(m.commentInput.Value())
	if m.commentEditID != "" {
		if text == "" {
			m.commentErr = comments.ErrEmptyText.Error()
			return nil
		}
		m.ctl.UpdateComment(m.commentEditID, text)
	} else if _, err := m.ctl.AddComment(m.commentRange, text); err != nil {
		m.commentErr = err.Error()
		return nil
	}
	m.closeCommentInput()
	m.rangeFrom = -1
	return m.refresh()
}

func (m *Model) closeCommentInput() {
	m.commentActive = false
	m.commentEditID = ""
	m.commentErr = ""
	m.commentInput.Blur()
	m.commentInput.SetValue("")
	m.diffDirty = true
	m.layout()
}

// commentAtCursor returns the first comment of the active file covering
// the cursor row on either side.
func (m Model) commentAtCursor() (comments.Comment, bool) {
	if m.diffCursor < 0 || m.diffCursor >= len(m.diffRows) {
		return comments.Comment{}, false
	}
	row := m.diffRows[m.diffCursor]
	for _, side := range []diffview.Side{diffview.SideNew, diffview.SideOld} {
		n, ok := row.Line(side)
		if !ok {
			continue
		}
		for _, c := range m.fileNotes {
			if covers(c, n, commentSide(side)) {
				return c, true
			}
		}
	}
	return comments.Comment{}, false
}

func (m *Model) moveDiffCursor(delta int) {
	if len(m.diffRows) == 0 {
		m.diffCursor = 0
		return
	}
	m.diffCursor = min(max(m.diffCursor+delta, 0), len(m.diffRows)-1)
	m.diffDirty = true
	m.refreshDiffContent()
}

func (m *Model) visibleDiffLines() int {
	visible := m.newView.VisibleLineCount()
	if m.diffPaneMode() == diffPaneModeOldOnly || visible <= 0 {
		visible = m.oldView.VisibleLineCount()
	}
	if visible <= 0 {
		visible = max(m.newView.Height, 1)
	}
	return visible
}

func (m *Model) totalDiffLines() int {
	return max(m.oldView.TotalLineCount(), m.newView.TotalLineCount())
}

func (m *Model) diffTop() int {
	if m.diffPaneMode() == diffPaneModeOldOnly {
		return m.oldView.YOffset
	}
	return m.newView.YOffset
}

func (m *Model) setDiffTop(top int) {
	m.oldView.SetYOffset(top)
	m.newView.SetYOffset(top)
}

func (m *Model) pageDiff(direction int) {
	if len(m.diffRows) == 0 || direction == 0 {
		return
	}
	visible := m.visibleDiffLines()
	total := m.totalDiffLines()
	if total <= 0 {
		return
	}
	maxTop := max(total-visible, 0)
	step := visible
	if step > 1 {
		// Keep one line of overlap between pages.
		step--
	}
	targetTop := min(max(m.diffTop()+direction*step, 0), maxTop)

	m.diffCursor = m.rowIndexForVisualLine(targetTop)
	m.diffDirty = true
	m.refreshDiffContent()
	m.setDiffTop(targetTop)
}

func (m *Model) scrollDiffWindow(delta int) {
	if delta == 0 || len(m.diffRows) == 0 {
		return
	}
	visible := m.visibleDiffLines()
	total := m.totalDiffLines()
	if total <= 0 {
		return
	}
	oldTop := m.diffTop()
	newTop := min(max(oldTop+delta, 0), max(total-visible, 0))
	if newTop == oldTop {
		return
	}

	start, _ := m.cursorVisualRange()
	rel := min(max(start-oldTop, 0), visible-1)
	m.diffCursor = m.rowIndexForVisualLine(newTop + rel)
	m.diffDirty = true
	m.refreshDiffContent()
	m.setDiffTop(newTop)
}

func (m *Model) ensureCursorVisible() {
	visibleHeight := min(m.oldView.Height, m.newView.Height)
	if visibleHeight <= 0 {
		return
	}
	start, end := m.cursorVisualRange()
	if start < m.diffTop() {
		m.setDiffTop(start)
		return
	}
	bottom := m.diffTop() + visibleHeight - 1
	if end > bottom {
		m.setDiffTop(end - visibleHeight + 1)
	}
}

func (m *Model) cursorVisualRange() (int, int) {
	if len(m.rowStarts) != len(m.diffRows) || len(m.rowHeights) != len(m.diffRows) {
		return m.diffCursor, m.diffCursor
	}
	if m.diffCursor < 0 || m.diffCursor >= len(m.rowStarts) {
		return 0, 0
	}
	start := m.rowStarts[m.diffCursor]
	height := max(m.rowHeights[m.diffCursor], 1)
	return start, start + height - 1
}

func (m *Model) rowIndexForVisualLine(line int) int {
	if len(m.rowStarts) != len(m.diffRows) || len(m.rowHeights) != len(m.diffRows) {
		return m.diffCursor
	}
	if line <= 0 {
		return 0
	}
	for i, start := range m.rowStarts {
		if line >= start && line < start+max(m.rowHeights[i], 1) {
			return i
		}
	}
	return len(m.diffRows) - 1
}

func (m *Model) clampDiffCursor() {
	if len(m.diffRows) == 0 {
		m.diffCursor = 0
		return
	}
	m.diffCursor = min(max(m.diffCursor, 0), len(m.diffRows)-1)
}
