package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"stagehand/internal/comments"
	"stagehand/internal/git"
	"stagehand/internal/selection"
)

var (
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleSection  = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	styleCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	styleBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
	styleTab      = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	styleTabOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Bold(true).Padding(0, 1)
	styleBrand    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("39")).Bold(true).Padding(0, 1)
	styleBusy     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	statusStyles = map[string]lipgloss.Style{
		"A": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"D": lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		"M": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"R": lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		"U": lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		"?": lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := styleDim.Render(truncateLinesToWidth(m.helpText(), m.width))

	leftW, rightW := paneWidths(m.width, m.listW, false, m.diffPaneMode() == diffPaneModeSplit)
	oldW, newW := m.diffSidePaneWidths(rightW)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderListPane(leftW, m.paneH),
		m.renderDiffPanes(oldW, newW, m.paneH),
	)
	if dock := m.renderDock(); dock != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, dock)
	}
	if m.confirm != nil {
		body = overlayCentered(body, m.renderConfirmModal(), m.width, lipgloss.Height(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) helpText() string {
	if !m.helpOpen {
		if m.state.ViewMode == selection.ModeHistory {
			return "tab focus | j/k move | enter files | h commits | / filter | c comment | y/Y copy | v changes | t split/unified | [ ] repo | ? help | q quit"
		}
		return "tab focus | j/k move | space select | J/K extend | s stage | x discard | S/U all | C commit | c comment | y/Y copy | v history | ? help | q quit"
	}
	return strings.Join([]string{
		"Global: q quit, tab switch focus, v changes/history, t split/unified, [ ] switch repo, W close repo, r refresh, esc dismiss, ? help",
		"Changes: j/k move, space toggle select, J/K extend range, 1/2 fold sections, s stage/unstage, S stage all, U unstage all, x discard, X discard all, C commit",
		"History: j/k move, enter open commit files, h back to commits, / filter commits, g/G first/last",
		"Diff: j/k move, ctrl-f/b page, ctrl-e/y scroll, g/G top/bottom, V select lines, c comment, e edit, d delete, h back to list",
		"Comments: y copy file comments, Y copy all comments in the repository",
	}, "\n")
}

func (m Model) renderHeader() string {
	parts := []string{styleBrand.Render("stagehand")}
	for _, repo := range m.state.Repos {
		name := filepath.Base(repo)
		if repo == m.state.ActiveRepo {
			parts = append(parts, styleTabOn.Render(name))
		} else {
			parts = append(parts, styleTab.Render(name))
		}
	}
	if m.hasSnapshot && m.snapshot.Branch != "" {
		parts = append(parts, styleDim.Render("⎇ "+m.snapshot.Branch))
	}
	parts = append(parts, styleDim.Render(string(m.state.ViewMode)))
	if a := m.state.RunningAction; a != "" {
		parts = append(parts, styleBusy.Render("working: "+a))
	}
	return ansi.Truncate(strings.Join(parts, " "), m.width, "…")
}

func (m Model) renderListPane(width, height int) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusList {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	lines, _ := m.listLines(width)
	page := m.listPageSize()
	start := min(max(m.listTop, 0), max(len(lines)-page, 0))
	end := min(start+page, len(lines))

	bodyLines := []string{lipgloss.NewStyle().Bold(true).Render(m.listTitle()), ""}
	bodyLines = append(bodyLines, lines[start:end]...)
	return paneStyle.Render(strings.Join(bodyLines, "\n"))
}

func (m Model) listTitle() string {
	if m.state.ViewMode == selection.ModeHistory {
		return fmt.Sprintf("History (%d)", len(m.commits))
	}
	if !m.hasSnapshot {
		return "Changes"
	}
	n := len(m.snapshot.Staged) + len(m.snapshot.Unstaged) + len(m.snapshot.Untracked)
	return fmt.Sprintf("Changes (%d)", n)
}

// listLines renders the list pane body and the line index of the cursor,
// or -1.
func (m Model) listLines(width int) ([]string, int) {
	switch {
	case m.state.ActiveRepo == "":
		return []string{styleDim.Render("No repository open.")}, -1
	case m.state.ViewMode == selection.ModeHistory:
		return m.historyLines(width)
	case !m.hasSnapshot:
		return []string{styleDim.Render("Loading...")}, -1
	}
	return m.changesLines(width)
}

func (m Model) changesLines(width int) ([]string, int) {
	var lines []string
	cursor := -1
	active, hasActive := m.activeFile()

	section := func(title string, collapsed bool, count int, buckets ...git.Bucket) {
		arrow := "▾"
		if collapsed {
			arrow = "▸"
		}
		lines = append(lines, fitLine(styleSection.Render(fmt.Sprintf("%s %s (%d)", arrow, title, count)), width))
		for _, row := range m.fileRows {
			if !bucketIn(row.Bucket, buckets) {
				continue
			}
			f := row.File()
			isCursor := hasActive && f == active
			if isCursor {
				cursor = len(lines)
			}
			lines = append(lines, m.fileLine(row.Item, isCursor, m.state.IsSelected(f), width))
		}
	}

	section("Staged Changes", m.state.StagedCollapsed, len(m.snapshot.Staged), git.BucketStaged)
	section("Changes", m.state.ChangesCollapsed, len(m.snapshot.Unstaged)+len(m.snapshot.Untracked), git.BucketUnstaged, git.BucketUntracked)
	if len(m.fileRows) == 0 && !m.state.StagedCollapsed && !m.state.ChangesCollapsed {
		lines = append(lines, "", styleDim.Render("Working tree clean."))
	}
	return lines, cursor
}

func (m Model) historyLines(width int) ([]string, int) {
	var lines []string
	cursor := -1
	if m.state.HistoryFilter != "" {
		lines = append(lines, fitLine(styleDim.Render("filter: "+m.state.HistoryFilter), width))
	}
	if len(m.commits) == 0 {
		text := "No commits."
		if !m.historyLoaded() {
			text = "Loading history..."
		}
		return append(lines, styleDim.Render(text)), cursor
	}

	onFiles := m.state.HistoryNavTarget == selection.NavFiles
	for _, c := range m.commits {
		isCursor := c.CommitID == m.state.HistoryCommitID
		if isCursor && !onFiles {
			cursor = len(lines)
		}
		prefix := "  "
		style := lipgloss.NewStyle()
		if isCursor {
			prefix = "▸ "
			style = styleCursor
		}
		text := prefix + c.ShortID + " " + c.Summary + " " + styleDim.Render(c.Author+", "+c.RelativeTime)
		lines = append(lines, fitLine(style.Render(text), width))
	}

	if m.state.HistoryCommitID == "" {
		return lines, cursor
	}
	lines = append(lines, "", fitLine(styleSection.Render(fmt.Sprintf("Files in %s (%d)", shortID(m.state.HistoryCommitID), len(m.commitFiles))), width))
	for _, f := range m.commitFiles {
		isCursor := onFiles && f.Path == m.state.ActivePath
		if isCursor {
			cursor = len(lines)
		}
		lines = append(lines, m.fileLine(f, isCursor, false, width))
	}
	return lines, cursor
}

func (m Model) historyLoaded() bool {
	return m.ctl.HistoryLoaded()
}

func (m Model) fileLine(item git.FileItem, isCursor, selected bool, width int) string {
	mark := "  "
	if isCursor {
		mark = styleCursor.Render("▸") + " "
	}
	sel := " "
	if selected {
		sel = styleSelected.Render("●")
	}
	letter := git.StatusLetter(item.Status)
	status := letter
	if st, ok := statusStyles[letter]; ok {
		status = st.Render(letter)
	}
	name := item.Path
	if item.PreviousPath != "" {
		name = item.PreviousPath + " → " + item.Path
	}
	if isCursor {
		name = styleCursor.Render(name)
	}
	badge := ""
	if n := m.counts[item.Path]; n > 0 {
		badge = " " + styleBadge.Render(fmt.Sprintf("◉%d", n))
	}
	return fitLine(mark+sel+" "+status+" "+name+badge, width)
}

func bucketIn(b git.Bucket, buckets []git.Bucket) bool {
	for _, x := range buckets {
		if x == b {
			return true
		}
	}
	return false
}

func (m Model) renderDiffPanes(oldWidth, newWidth, height int) string {
	switch {
	case oldWidth <= 0:
		return m.renderDiffSidePane(newWidth, height, m.diffTitle("New"), m.newView.View(), true)
	case newWidth <= 0:
		return m.renderDiffSidePane(oldWidth, height, m.diffTitle("Old"), m.oldView.View(), true)
	}
	oldPane := m.renderDiffSidePane(oldWidth, height, m.diffTitle("Old"), m.oldView.View(), false)
	newPane := m.renderDiffSidePane(newWidth, height, m.diffTitle("New"), m.newView.View(), true)
	return lipgloss.JoinHorizontal(lipgloss.Top, oldPane, newPane)
}

func (m Model) diffTitle(side string) string {
	if m.diffPaneMode() == diffPaneModeUnified {
		side = "Diff"
	}
	if m.state.ActivePath == "" {
		return side
	}
	title := side + ": " + m.state.ActivePath
	if m.state.ViewMode == selection.ModeHistory && m.state.HistoryCommitID != "" {
		title += " @ " + shortID(m.state.HistoryCommitID)
	} else if m.state.ActiveBucket != "" {
		title += " [" + m.state.ActiveBucket.String() + "]"
	}
	if m.rangeFrom >= 0 {
		title += " (selecting lines)"
	}
	return title
}

func (m Model) renderDiffSidePane(width, height int, title, body string, withRightBorder bool) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusDiff {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder(), true, withRightBorder, true, true).
		BorderForeground(borderColor)

	innerW := max(1, width)
	header := lipgloss.NewStyle().Bold(true).Width(innerW).MaxWidth(innerW).Render(ansi.Truncate(title, innerW, "…"))
	return paneStyle.Render(header + "\n\n" + body)
}

// renderDock returns the panel shown under the panes, if any. Editors win
// over errors, and errors over notices.
func (m Model) renderDock() string {
	switch {
	case m.commentActive:
		return m.renderCommentDock()
	case m.commitActive:
		return m.renderCommitDock()
	case m.filterActive:
		return m.renderFilterDock()
	case m.state.Error != "":
		return m.renderErrorDock()
	case m.alertMsg != "":
		return m.renderAlertDock()
	}
	return ""
}

func (m Model) renderCommentDock() string {
	title := "Add Comment"
	if m.commentEditID != "" {
		title = "Edit Comment"
	}
	r := comments.NormalizeRange(m.commentRange)
	title += " · @" + m.state.ActivePath + "#" + comments.FormatRange(r.Start, r.End)

	contentW := max(10, m.width-2)
	input := m.commentInput
	input.Width = max(1, contentW-9)
	inputBox := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		Render(input.View())
	hint := styleDim.Render("Enter save | Esc cancel")

	bodyLines := []string{inputBox, "", hint}
	if m.commentErr != "" {
		bodyLines = append(bodyLines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("Error: "+m.commentErr))
	}
	return m.renderDockPanel(title, lipgloss.Color("39"), lipgloss.Color("39"), strings.Join(bodyLines, "\n"))
}

func (m Model) renderCommitDock() string {
	staged := 0
	if m.hasSnapshot {
		staged = len(m.snapshot.Staged)
	}
	title := fmt.Sprintf("Commit %d staged file(s)", staged)
	if m.hasSnapshot && m.snapshot.Branch != "" {
		title += " to " + m.snapshot.Branch
	}
	hint := styleDim.Render("Ctrl-S commit | Esc close")
	body := m.commitInput.View() + "\n\n" + hint
	return m.renderDockPanel(title, lipgloss.Color("42"), lipgloss.Color("42"), body)
}

func (m Model) renderFilterDock() string {
	hint := styleDim.Render("Enter keep | Esc clear")
	return m.renderDockPanel("Filter History", lipgloss.Color("63"), lipgloss.Color("63"), m.filterInput.View()+"\n\n"+hint)
}

func (m Model) renderErrorDock() string {
	hint := styleDim.Render("Esc dismiss")
	return m.renderDockPanel("Error", lipgloss.Color("196"), lipgloss.Color("196"), m.state.Error+"\n\n"+hint)
}

func (m Model) renderAlertDock() string {
	hint := styleDim.Render("Auto-hides after 3s")
	body := strings.Join([]string{m.alertMsg, "", hint}, "\n")
	return m.renderDockPanel("Notice", lipgloss.Color("220"), lipgloss.Color("220"), body)
}

func (m Model) renderConfirmModal() string {
	body := strings.Join([]string{
		m.confirm.body,
		"",
		styleDim.Render("Y/Enter confirm | N/Esc cancel"),
	}, "\n")

	width := 54
	if m.width > 0 && m.width-6 < width {
		width = max(24, m.width-6)
	}

	title := lipgloss.NewStyle().
		Width(max(1, width-2)).
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("196")).
		Render(m.confirm.title)

	bodyBlock := lipgloss.NewStyle().
		Width(max(1, width-2)).
		Padding(1, 2).
		Render(body)

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Render(title + "\n" + bodyBlock)
}

func (m Model) renderDockPanel(title string, titleColor, borderColor lipgloss.Color, body string) string {
	contentW := max(10, m.width-2)
	titleText := ansi.Truncate(title, max(1, contentW-2), "")
	titleBar := lipgloss.NewStyle().
		Width(contentW).
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(titleColor).
		Render(titleText)

	bodyBlock := lipgloss.NewStyle().
		Width(contentW).
		Padding(1, 2).
		Render(body)

	return lipgloss.NewStyle().
		Width(contentW).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Render(titleBar + "\n" + bodyBlock)
}

func fitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

func overlayCentered(base, overlay string, width, height int) string {
	baseLines := normalizeCanvas(base, width, height)
	overlayLines := strings.Split(overlay, "\n")
	overlayW := lipgloss.Width(overlay)
	overlayH := len(overlayLines)
	if overlayW <= 0 || overlayH <= 0 {
		return strings.Join(baseLines, "\n")
	}

	x := max(0, (width-overlayW)/2)
	y := max(0, (height-overlayH)/2)
	for i, ol := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		baseLines[row] = overlayLine(baseLines[row], ol, x, overlayW, width)
	}
	return strings.Join(baseLines, "\n")
}

func normalizeCanvas(s string, width, height int) []string {
	width, height = max(width, 1), max(height, 1)
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, height)
	for i := 0; i < height; i++ {
		line := ""
		if i < len(raw) {
			line = raw[i]
		}
		w := lipgloss.Width(line)
		switch {
		case w > width:
			lines = append(lines, ansi.Truncate(line, width, ""))
		case w < width:
			lines = append(lines, line+strings.Repeat(" ", width-w))
		default:
			lines = append(lines, line)
		}
	}
	return lines
}

func overlayLine(baseLine, overlayLine string, x, overlayW, totalW int) string {
	if overlayW <= 0 {
		return baseLine
	}
	x = max(x, 0)
	if x >= totalW {
		return baseLine
	}
	if x+overlayW > totalW {
		overlayLine = ansi.Truncate(overlayLine, totalW-x, "")
		overlayW = lipgloss.Width(overlayLine)
		if overlayW <= 0 {
			return baseLine
		}
	}

	plain := []rune(ansi.Strip(baseLine))
	if len(plain) < totalW {
		plain = append(plain, []rune(strings.Repeat(" ", totalW-len(plain)))...)
	}
	left := string(plain[:x])
	rightStart := min(x+overlayW, len(plain))
	return left + overlayLine + string(plain[rightStart:])
}

func truncateLinesToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > width {
			lines[i] = string(runes[:width])
		}
	}
	return strings.Join(lines, "\n")
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
