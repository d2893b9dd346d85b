package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stagehand/internal/comments"
	"stagehand/internal/diffview"
	"stagehand/internal/engine"
	"stagehand/internal/git"
	"stagehand/internal/mutation"
	"stagehand/internal/navigation"
	"stagehand/internal/selection"
)

type focusPane int

const (
	focusList focusPane = iota
	focusDiff
)

const (
	listPaneWidthDefault = 40
	listPaneWidthWide    = 72
)

// opDoneMsg reports a finished engine call started by a command.
type opDoneMsg struct {
	op  string
	err error
}

type copyDoneMsg struct {
	count int
	err   error
}

// engineChangedMsg is sent when the engine changed state on its own, for
// example after a watcher-driven refresh.
type engineChangedMsg struct{}

type alertTickMsg struct{}

const (
	opSync       = "sync"
	opRefresh    = "refresh"
	opStage      = "stage"
	opUnstage    = "unstage"
	opDiscard    = "discard"
	opStageAll   = "stage-all"
	opUnstageAll = "unstage-all"
	opDiscardAll = "discard-all"
	opCommit     = "commit"
)

// confirmPrompt is a pending destructive action waiting for y/n.
type confirmPrompt struct {
	title string
	body  string
	run   func() tea.Cmd
}

// Model is the Bubble Tea front end of an engine.Controller. Everything the
// user sees is read back from the controller after each change; the model
// only keeps layout, scroll and editor state.
type Model struct {
	ctx   context.Context
	ctl   *engine.Controller
	keys  KeyMap
	focus focusPane

	width  int
	height int
	ready  bool

	state       selection.View
	snapshot    git.Snapshot
	hasSnapshot bool
	fileRows    []navigation.Row
	commits     []git.HistoryCommit
	commitFiles []git.FileItem
	counts      map[string]int
	fileNotes   []comments.Comment
	annotations []comments.Annotation
	synced      string

	listW    int
	listWide bool
	listTop  int
	paneH    int

	diffRows   []diffview.DiffRow
	diffFor    *git.FileVersions
	diffErr    error
	diffCursor int
	rangeFrom  int
	rowStarts  []int
	rowHeights []int
	oldView    viewport.Model
	newView    viewport.Model
	diffDirty  bool
	oldWidth   int
	newWidth   int
	highlight  *diffview.Highlighter

	commentActive bool
	commentInput  textinput.Model
	commentRange  comments.Range
	commentEditID string
	commentErr    string

	commitActive bool
	commitInput  textarea.Model

	filterActive bool
	filterInput  textinput.Model

	confirm    *confirmPrompt
	helpOpen   bool
	alertMsg   string
	alertUntil time.Time
}

// NewModel builds a model reading from ctl. ctx bounds every engine call
// the model starts.
func NewModel(ctx context.Context, ctl *engine.Controller) Model {
	commentInput := textinput.New()
	commentInput.Prompt = ""
	commentInput.Placeholder = "Type comment"
	commentInput.CharLimit = 4096
	commentInput.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	commentInput.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	filterInput := textinput.New()
	filterInput.Prompt = "/ "
	filterInput.Placeholder = "summary, author or id"
	filterInput.CharLimit = 256
	filterInput.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	commitInput := textarea.New()
	commitInput.Placeholder = "Commit message"
	commitInput.ShowLineNumbers = false
	commitInput.CharLimit = 0
	commitInput.SetHeight(4)

	m := Model{
		ctx:          ctx,
		ctl:          ctl,
		keys:         defaultKeyMap(),
		focus:        focusList,
		listW:        listPaneWidthDefault,
		rangeFrom:    -1,
		commentInput: commentInput,
		filterInput:  filterInput,
		commitInput:  commitInput,
		diffDirty:    true,
		oldWidth:     -1,
		newWidth:     -1,
		highlight:    diffview.NewHighlighter(true),
	}
	m.oldView = viewport.New(1, 1)
	m.newView = viewport.New(1, 1)
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.syncCmd(), alertTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.diffDirty = true
		m.refresh()
		return m, nil

	case engineChangedMsg:
		return m, m.refresh()

	case opDoneMsg:
		cmd := m.refresh()
		if msg.err != nil {
			m.reportError(msg.op, msg.err)
			return m, cmd
		}
		if msg.op == opCommit {
			m.closeCommitBox()
			if id := m.state.LastCommitID; id != "" {
				m.setAlert("Committed " + shortID(id) + ".")
			}
		}
		return m, cmd

	case copyDoneMsg:
		switch {
		case errors.Is(msg.err, engine.ErrNoComments):
			m.setAlert("No comments to copy.")
		case msg.err != nil:
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
		default:
			m.setAlert(fmt.Sprintf("Copied %d comment(s) to clipboard.", msg.count))
		}
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
			m.layout()
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.commentActive:
		m.commentInput, cmd = m.commentInput.Update(msg)
	case m.commitActive:
		m.commitInput, cmd = m.commitInput.Update(msg)
	case m.filterActive:
		m.filterInput, cmd = m.filterInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirm(msg)
	}

	// List movement goes through the controller, which ignores it while an
	// editor has focus; the key then falls through to the editor.
	if m.focus == focusList {
		if dir, ok := arrowDirection(msg); ok {
			if m.ctl.Move(dir, m.focusElement()) {
				return m, m.refresh()
			}
		}
		if dir, ok := extendDirection(msg); ok {
			if m.ctl.Extend(dir, m.focusElement()) {
				return m, m.refresh()
			}
		}
	}

	switch {
	case m.commentActive:
		return m.handleCommentInput(msg)
	case m.commitActive:
		return m.handleCommitInput(msg)
	case m.filterActive:
		return m.handleFilterInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		switch {
		case m.rangeFrom >= 0:
			m.rangeFrom = -1
			m.diffDirty = true
			m.refreshDiffContent()
		case m.state.Error != "":
			m.ctl.DismissError()
			return m, m.refresh()
		case m.state.ViewMode == selection.ModeHistory && m.state.HistoryNavTarget == selection.NavFiles:
			m.ctl.SetHistoryNavTarget(selection.NavCommits)
			return m, m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.ToggleFocus):
		if m.focus == focusList {
			m.focus = focusDiff
		} else {
			m.focus = focusList
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.helpOpen = !m.helpOpen
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		ctl := m.ctl
		return m, m.runCmd(opRefresh, ctl.Refresh)
	case key.Matches(msg, m.keys.ViewMode):
		next := selection.ModeHistory
		if m.state.ViewMode == selection.ModeHistory {
			next = selection.ModeChanges
		}
		m.ctl.SetViewMode(next)
		return m, m.refresh()
	case key.Matches(msg, m.keys.DiffStyle):
		next := selection.DiffUnified
		if m.state.DiffStyle == selection.DiffUnified {
			next = selection.DiffSplit
		}
		m.ctl.SetDiffStyle(next)
		m.diffDirty = true
		return m, m.refresh()
	case key.Matches(msg, m.keys.NextRepo):
		return m, m.switchRepo(1)
	case key.Matches(msg, m.keys.PrevRepo):
		return m, m.switchRepo(-1)
	case key.Matches(msg, m.keys.CloseRepo):
		if m.state.ActiveRepo == "" {
			return m, nil
		}
		if err := m.ctl.CloseRepo(m.state.ActiveRepo); err != nil {
			m.setAlert(err.Error())
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.CopyFile):
		return m, m.copyCmd(engine.ScopeFile)
	case key.Matches(msg, m.keys.CopyRepo):
		return m, m.copyCmd(engine.ScopeRepo)
	}

	if m.focus == focusList {
		return m.updateListPane(msg)
	}
	return m.updateDiffPane(msg)
}

func (m Model) updateListPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isRuneKey(msg, "z") {
		m.listWide = !m.listWide
		m.listW = listPaneWidthDefault
		if m.listWide {
			m.listW = listPaneWidthWide
		}
		m.diffDirty = true
		m.layout()
		return m, nil
	}
	if key.Matches(msg, m.keys.Up) {
		m.ctl.Move(navigation.Prev, nil)
		return m, m.refresh()
	}
	if key.Matches(msg, m.keys.Down) {
		m.ctl.Move(navigation.Next, nil)
		return m, m.refresh()
	}
	if key.Matches(msg, m.keys.ExtendUp) {
		m.ctl.Extend(navigation.Prev, nil)
		return m, m.refresh()
	}
	if key.Matches(msg, m.keys.ExtendDown) {
		m.ctl.Extend(navigation.Next, nil)
		return m, m.refresh()
	}

	if m.state.ViewMode == selection.ModeHistory {
		return m.updateHistoryList(msg)
	}
	return m.updateChangesList(msg)
}

func (m Model) updateChangesList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	active, hasActive := m.activeFile()

	switch {
	case key.Matches(msg, m.keys.Top):
		if len(m.fileRows) > 0 {
			ctl.SelectFile(m.fileRows[0].File())
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.fileRows); n > 0 {
			ctl.SelectFile(m.fileRows[n-1].File())
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Toggle):
		if hasActive {
			ctl.ToggleFile(active)
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Open):
		if hasActive {
			m.focus = focusDiff
		}
		return m, nil
	case key.Matches(msg, m.keys.CollapseStaged):
		ctl.ToggleStagedCollapsed()
		return m, m.refresh()
	case key.Matches(msg, m.keys.CollapseChanges):
		ctl.ToggleChangesCollapsed()
		return m, m.refresh()
	case key.Matches(msg, m.keys.Stage):
		if !hasActive {
			return m, nil
		}
		path := active.Path
		if active.Bucket == git.BucketStaged {
			return m, m.runCmd(opUnstage, func(ctx context.Context) error {
				return ctl.UnstageFile(ctx, path)
			})
		}
		return m, m.runCmd(opStage, func(ctx context.Context) error {
			return ctl.StageFile(ctx, path)
		})
	case key.Matches(msg, m.keys.StageAll):
		return m, m.runCmd(opStageAll, ctl.StageAll)
	case key.Matches(msg, m.keys.UnstageAll):
		return m, m.runCmd(opUnstageAll, ctl.UnstageAll)
	case key.Matches(msg, m.keys.Discard):
		targets := m.discardTargets()
		if len(targets) == 0 {
			return m, nil
		}
		body := "Discard changes to " + targets[0].Path + "?"
		if len(targets) > 1 {
			body = fmt.Sprintf("Discard changes to %d files?", len(targets))
		}
		m.confirm = &confirmPrompt{
			title: "Discard Changes",
			body:  body,
			run: func() tea.Cmd {
				if len(targets) == 1 {
					f := targets[0]
					return m.runCmd(opDiscard, func(ctx context.Context) error {
						return ctl.DiscardFile(ctx, f)
					})
				}
				return m.runCmd(opDiscard, ctl.DiscardSelection)
			},
		}
		return m, nil
	case key.Matches(msg, m.keys.DiscardAll):
		if !m.hasSnapshot || len(m.snapshot.Staged)+len(navigation.ChangedRows(m.snapshot)) == 0 {
			m.setAlert("Nothing to discard.")
			return m, nil
		}
		m.confirm = &confirmPrompt{
			title: "Discard All",
			body:  "Discard every staged, unstaged and untracked change?",
			run: func() tea.Cmd {
				return m.runCmd(opDiscardAll, ctl.DiscardAll)
			},
		}
		return m, nil
	case key.Matches(msg, m.keys.Commit):
		return m, m.openCommitBox()
	}
	return m, nil
}

func (m Model) updateHistoryList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	onFiles := m.state.HistoryNavTarget == selection.NavFiles

	switch {
	case key.Matches(msg, m.keys.Top), key.Matches(msg, m.keys.Bottom):
		last := key.Matches(msg, m.keys.Bottom)
		if onFiles {
			if n := len(m.commitFiles); n > 0 {
				i := 0
				if last {
					i = n - 1
				}
				ctl.SelectCommitFile(m.commitFiles[i].Path)
			}
		} else if n := len(m.commits); n > 0 {
			i := 0
			if last {
				i = n - 1
			}
			ctl.SelectCommit(m.commits[i].CommitID)
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Open):
		if onFiles {
			m.focus = focusDiff
			return m, nil
		}
		if m.state.HistoryCommitID != "" {
			ctl.SetHistoryNavTarget(selection.NavFiles)
		}
		return m, m.refresh()
	case key.Matches(msg, m.keys.Back):
		ctl.SetHistoryNavTarget(selection.NavCommits)
		return m, m.refresh()
	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.filterInput.SetValue(m.state.HistoryFilter)
		m.filterInput.CursorEnd()
		cmd := m.filterInput.Focus()
		m.layout()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateDiffPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveDiffCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveDiffCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.pageDiff(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.pageDiff(1)
	case isRuneKey(msg, "ctrl+y"):
		m.scrollDiffWindow(-1)
	case isRuneKey(msg, "ctrl+e"):
		m.scrollDiffWindow(1)
	case key.Matches(msg, m.keys.Top):
		m.diffCursor = 0
		m.diffDirty = true
		m.refreshDiffContent()
	case key.Matches(msg, m.keys.Bottom):
		m.diffCursor = max(len(m.diffRows)-1, 0)
		m.diffDirty = true
		m.refreshDiffContent()
	case key.Matches(msg, m.keys.Back):
		m.focus = focusList
	case key.Matches(msg, m.keys.SelectRange):
		if m.rangeFrom >= 0 {
			m.rangeFrom = -1
		} else if len(m.diffRows) > 0 {
			m.rangeFrom = m.diffCursor
		}
		m.diffDirty = true
		m.refreshDiffContent()
	case key.Matches(msg, m.keys.Comment):
		return m, m.startComment()
	case key.Matches(msg, m.keys.Edit):
		return m, m.startCommentEdit()
	case key.Matches(msg, m.keys.Delete):
		c, ok := m.commentAtCursor()
		if !ok {
			m.setAlert("No comment on this line.")
			return m, nil
		}
		m.ctl.RemoveComment(c.ID)
		return m, m.refresh()
	case key.Matches(msg, m.keys.Commit):
		if m.state.ViewMode == selection.ModeChanges {
			return m, m.openCommitBox()
		}
	}
	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isRuneKey(msg, "y"), msg.Type == tea.KeyEnter:
		run := m.confirm.run
		m.confirm = nil
		return m, run()
	case isRuneKey(msg, "n"), msg.Type == tea.KeyEsc:
		m.confirm = nil
	}
	return m, nil
}

func (m Model) handleCommentInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeCommentInput()
		return m, nil
	case tea.KeyEnter:
		return m, m.saveCommentInput()
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	m.commentErr = ""
	return m, cmd
}

func (m Model) handleCommitInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.closeCommitBox()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.ctl.SetCommitMessage(m.commitInput.Value())
		if err := m.commitBlocker(); err != nil {
			m.setAlert(err.Error())
			return m, nil
		}
		return m, m.runCmd(opCommit, m.ctl.Commit)
	}
	var cmd tea.Cmd
	m.commitInput, cmd = m.commitInput.Update(msg)
	m.ctl.SetCommitMessage(m.commitInput.Value())
	m.state = m.ctl.State()
	return m, cmd
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.ctl.SetHistoryFilter("")
		m.closeFilter()
		return m, m.refresh()
	case tea.KeyEnter:
		m.closeFilter()
		return m, m.refresh()
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.ctl.SetHistoryFilter(m.filterInput.Value())
	return m, tea.Batch(cmd, m.refresh())
}

// refresh reads the controller back into the model. It returns a sync
// command when the selection moved to something not loaded yet.
func (m *Model) refresh() tea.Cmd {
	m.state = m.ctl.State()
	m.snapshot, m.hasSnapshot = m.ctl.Snapshot()
	m.fileRows = m.ctl.VisibleFileRows()
	m.commits = m.ctl.VisibleCommits()
	m.commitFiles = m.ctl.VisibleCommitFiles()
	m.counts = m.ctl.CommentCounts()
	m.fileNotes = m.ctl.FileComments()
	m.annotations = m.ctl.Annotations()

	if !sameVersions(m.diffFor, m.state.Diff) {
		m.setDiff(m.state.Diff)
	}
	m.diffDirty = true
	m.layout()

	k := selectionKey(m.state)
	if k == m.synced {
		return nil
	}
	m.synced = k
	return m.syncCmd()
}

// layout sizes panes and viewports for the current window.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	footerH := lineCount(truncateLinesToWidth(m.helpText(), m.width))
	dockH := 0
	if dock := m.renderDock(); dock != "" {
		dockH = lipgloss.Height(dock)
	}
	// Header line plus top and bottom borders.
	m.paneH = max(1, m.height-footerH-dockH-3)

	_, rightW := paneWidths(m.width, m.listW, false, m.diffPaneMode() == diffPaneModeSplit)
	oldW, newW := m.diffSidePaneWidths(rightW)
	if m.oldView.Width != max(1, oldW) || m.newView.Width != max(1, newW) {
		m.diffDirty = true
	}
	m.oldView.Width = max(1, oldW)
	m.newView.Width = max(1, newW)
	// Title and a blank line sit above the viewports.
	m.oldView.Height = max(1, m.paneH-2)
	m.newView.Height = max(1, m.paneH-2)
	m.commitInput.SetWidth(max(10, m.width-10))

	lines, cursor := m.listLines(max(1, m.listW))
	m.listTop = listWindow(m.listTop, cursor, len(lines), m.listPageSize())
	m.refreshDiffContent()
}

func (m Model) listPageSize() int {
	// Pane title and a blank line.
	return max(1, m.paneH-2)
}

func (m Model) syncCmd() tea.Cmd {
	return m.runCmd(opSync, m.ctl.Sync)
}

func (m Model) runCmd(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) copyCmd(scope engine.CopyScope) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		n, err := ctl.CopyComments(ctx, scope)
		return copyDoneMsg{count: n, err: err}
	}
}

// reportError surfaces failures the controller did not already put in its
// error slot.
func (m *Model) reportError(op string, err error) {
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, mutation.ErrBusy):
		m.setAlert("Another action is still running.")
	case errors.Is(err, engine.ErrNoRepository):
		if op != opSync {
			m.setAlert("No repository open.")
		}
	case errors.Is(err, engine.ErrNoFile), errors.Is(err, engine.ErrEmptyMessage), errors.Is(err, engine.ErrNothingStaged):
		m.setAlert(err.Error())
	case m.state.Error == "":
		m.setAlert(err.Error())
	}
}

func (m *Model) switchRepo(delta int) tea.Cmd {
	repos := m.state.Repos
	if len(repos) < 2 {
		return nil
	}
	cur := 0
	for i, r := range repos {
		if r == m.state.ActiveRepo {
			cur = i
		}
	}
	next := repos[(cur+delta+len(repos))%len(repos)]
	if err := m.ctl.SetActiveRepo(next); err != nil {
		m.setAlert(err.Error())
		return nil
	}
	m.listTop = 0
	return m.refresh()
}

func (m Model) activeFile() (selection.SelectedFile, bool) {
	if m.state.ActivePath == "" || m.state.ViewMode != selection.ModeChanges {
		return selection.SelectedFile{}, false
	}
	return selection.SelectedFile{Bucket: m.state.ActiveBucket, Path: m.state.ActivePath}, true
}

// discardTargets is the multi-selection when there is one, else the active
// file.
func (m Model) discardTargets() []selection.SelectedFile {
	if len(m.state.SelectedFiles) > 0 {
		return m.state.SelectedFiles
	}
	if f, ok := m.activeFile(); ok {
		return []selection.SelectedFile{f}
	}
	return nil
}

func (m Model) commitBlocker() error {
	switch {
	case m.state.ActiveRepo == "":
		return engine.ErrNoRepository
	case strings.TrimSpace(m.commitInput.Value()) == "":
		return engine.ErrEmptyMessage
	case !m.hasSnapshot || len(m.snapshot.Staged) == 0:
		return engine.ErrNothingStaged
	}
	return nil
}

func (m *Model) openCommitBox() tea.Cmd {
	if m.state.ViewMode != selection.ModeChanges || m.state.ActiveRepo == "" {
		return nil
	}
	m.commitActive = true
	m.commitInput.SetValue(m.state.CommitMessage)
	cmd := m.commitInput.Focus()
	m.layout()
	return cmd
}

func (m *Model) closeCommitBox() {
	m.commitActive = false
	m.commitInput.Blur()
	m.layout()
}

func (m *Model) closeFilter() {
	m.filterActive = false
	m.filterInput.Blur()
	m.layout()
}

// focusElement describes the focused editor, if any, for the controller's
// typing guard.
func (m Model) focusElement() navigation.Element {
	switch {
	case m.commitActive:
		return &navigation.Node{TagName: "textarea"}
	case m.commentActive, m.filterActive:
		return &navigation.Node{TagName: "input"}
	}
	return nil
}

func arrowDirection(msg tea.KeyMsg) (navigation.Direction, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return navigation.Prev, true
	case tea.KeyDown:
		return navigation.Next, true
	}
	return 0, false
}

func extendDirection(msg tea.KeyMsg) (navigation.Direction, bool) {
	switch msg.Type {
	case tea.KeyShiftUp:
		return navigation.Prev, true
	case tea.KeyShiftDown:
		return navigation.Next, true
	}
	return 0, false
}

func isRuneKey(msg tea.KeyMsg, key string) bool {
	return msg.String() == key
}

// selectionKey changes whenever the view points at data that may need
// loading.
func selectionKey(v selection.View) string {
	return strings.Join([]string{
		v.ActiveRepo,
		string(v.ViewMode),
		v.HistoryCommitID,
		string(v.ActiveBucket),
		v.ActivePath,
	}, "\x00")
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(3 * time.Second)
	m.layout()
}
