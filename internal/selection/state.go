// Package selection holds the single "what is the user looking at" state
// and the reconciliation rules that keep it valid against fetched data.
//
// State is not safe for concurrent use; the owner serializes access.
package selection

import (
	"slices"

	"stagehand/internal/git"
)

// ViewMode is the list the user is browsing.
type ViewMode string

const (
	ModeChanges ViewMode = "changes"
	ModeHistory ViewMode = "history"
)

// NavTarget picks the history sub-list that arrow keys move within.
type NavTarget string

const (
	NavCommits NavTarget = "commits"
	NavFiles   NavTarget = "files"
)

// DiffStyle picks side-by-side or single-column diffs.
type DiffStyle string

const (
	DiffSplit   DiffStyle = "split"
	DiffUnified DiffStyle = "unified"
)

// SelectedFile identifies a file row by bucket and path.
type SelectedFile struct {
	Bucket git.Bucket `json:"bucket"`
	Path   string     `json:"path"`
}

// State is the selection of one client: open repositories, the active
// view and everything selected in it.
type State struct {
	repos      []string
	activeRepo string
	viewMode   ViewMode

	activeBucket git.Bucket
	activePath   string
	selected     []SelectedFile
	anchor       *SelectedFile
	diff         *git.FileVersions

	historyCommitID  string
	historyNavTarget NavTarget

	stagedCollapsed  bool
	changesCollapsed bool
	historyFilter    string
	diffStyle        DiffStyle

	runningAction string
	lastError     string
	commitMessage string
	lastCommitID  string
}

func New() *State {
	return &State{
		viewMode:         ModeChanges,
		historyNavTarget: NavCommits,
		diffStyle:        DiffSplit,
	}
}

// View is a copy of every field, for readers outside the owner's lock.
type View struct {
	Repos            []string
	ActiveRepo       string
	ViewMode         ViewMode
	ActiveBucket     git.Bucket
	ActivePath       string
	SelectedFiles    []SelectedFile
	Anchor           *SelectedFile
	Diff             *git.FileVersions
	HistoryCommitID  string
	HistoryNavTarget NavTarget
	StagedCollapsed  bool
	ChangesCollapsed bool
	HistoryFilter    string
	DiffStyle        DiffStyle
	RunningAction    string
	Error            string
	CommitMessage    string
	LastCommitID     string
}

func (s *State) View() View {
	v := View{
		Repos:            slices.Clone(s.repos),
		ActiveRepo:       s.activeRepo,
		ViewMode:         s.viewMode,
		ActiveBucket:     s.activeBucket,
		ActivePath:       s.activePath,
		SelectedFiles:    slices.Clone(s.selected),
		HistoryCommitID:  s.historyCommitID,
		HistoryNavTarget: s.historyNavTarget,
		StagedCollapsed:  s.stagedCollapsed,
		ChangesCollapsed: s.changesCollapsed,
		HistoryFilter:    s.historyFilter,
		DiffStyle:        s.diffStyle,
		RunningAction:    s.runningAction,
		Error:            s.lastError,
		CommitMessage:    s.commitMessage,
		LastCommitID:     s.lastCommitID,
	}
	if s.anchor != nil {
		a := *s.anchor
		v.Anchor = &a
	}
	if s.diff != nil {
		d := *s.diff
		v.Diff = &d
	}
	return v
}

// IsSelected reports multi-select membership.
func (v View) IsSelected(f SelectedFile) bool {
	return slices.Contains(v.SelectedFiles, f)
}

func (s *State) Repos() []string { return slices.Clone(s.repos) }
func (s *State) ActiveRepo() string { return s.activeRepo }
func (s *State) ViewMode() ViewMode { return s.viewMode }
func (s *State) ActiveBucket() git.Bucket { return s.activeBucket }
func (s *State) ActivePath() string { return s.activePath }
func (s *State) SelectedFiles() []SelectedFile { return slices.Clone(s.selected) }
func (s *State) HistoryCommitID() string { return s.historyCommitID }
func (s *State) HistoryNavTarget() NavTarget { return s.historyNavTarget }
func (s *State) StagedCollapsed() bool { return s.stagedCollapsed }
func (s *State) ChangesCollapsed() bool { return s.changesCollapsed }
func (s *State) HistoryFilter() string { return s.historyFilter }
func (s *State) DiffStyle() DiffStyle { return s.diffStyle }
func (s *State) Diff() *git.FileVersions { return s.diff }
func (s *State) RunningAction() string { return s.runningAction }
func (s *State) Error() string { return s.lastError }
func (s *State) CommitMessage() string { return s.commitMessage }
func (s *State) LastCommitID() string { return s.lastCommitID }

// ActiveFile returns the changes-mode selection.
func (s *State) ActiveFile() (SelectedFile, bool) {
	if s.activePath == "" {
		return SelectedFile{}, false
	}
	return SelectedFile{Bucket: s.activeBucket, Path: s.activePath}, true
}

// Anchor returns the range anchor. It may be stale; callers re-validate.
func (s *State) Anchor() (SelectedFile, bool) {
	if s.anchor == nil {
		return SelectedFile{}, false
	}
	return *s.anchor, true
}

// AddRepo registers an open repository. The first one becomes active.
func (s *State) AddRepo(path string) {
	if !slices.Contains(s.repos, path) {
		s.repos = append(s.repos, path)
	}
	if s.activeRepo == "" {
		s.SetActiveRepo(path)
	}
}

// RemoveRepo closes a repository; when it was active the next open one
// (or none) takes over.
func (s *State) RemoveRepo(path string) {
	i := slices.Index(s.repos, path)
	if i < 0 {
		return
	}
	s.repos = slices.Delete(s.repos, i, i+1)
	if s.activeRepo != path {
		return
	}
	next := ""
	if len(s.repos) > 0 {
		next = s.repos[min(i, len(s.repos)-1)]
	}
	s.SetActiveRepo(next)
}

// SetActiveRepo switches repositories and resets every selection facet.
func (s *State) SetActiveRepo(path string) {
	if s.activeRepo == path {
		return
	}
	s.activeRepo = path
	s.ClearFileSelection()
	s.historyCommitID = ""
	s.historyNavTarget = NavCommits
	s.lastError = ""
	s.commitMessage = ""
	s.lastCommitID = ""
}

// SetViewMode switches between changes and history. activePath belongs to
// one mode at a time, so it is cleared along with the multi-select.
func (s *State) SetViewMode(m ViewMode) {
	if s.viewMode == m {
		return
	}
	s.viewMode = m
	s.ClearFileSelection()
}

// ClearFileSelection drops the active file, the multi-select and the anchor.
func (s *State) ClearFileSelection() {
	s.activeBucket = ""
	s.activePath = ""
	s.selected = nil
	s.anchor = nil
	s.diff = nil
}

// SelectFile is the plain click: one active row, a one-item set, anchor on it.
func (s *State) SelectFile(f SelectedFile) {
	s.SetActiveFile(f)
	s.selected = []SelectedFile{f}
	s.SetAnchor(&f)
}

// SetActiveFile moves the diff selection without touching the multi-select.
func (s *State) SetActiveFile(f SelectedFile) {
	if s.activeBucket != f.Bucket || s.activePath != f.Path {
		s.diff = nil
	}
	s.activeBucket = f.Bucket
	s.activePath = f.Path
}

// ToggleSelected adds or removes f from the multi-select and makes it the
// anchor and active row.
func (s *State) ToggleSelected(f SelectedFile) {
	if i := slices.Index(s.selected, f); i >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
	} else {
		s.selected = append(slices.Clone(s.selected), f)
	}
	s.SetActiveFile(f)
	s.SetAnchor(&f)
}

// SetSelection replaces the multi-select, dropping duplicates.
func (s *State) SetSelection(files []SelectedFile) {
	out := make([]SelectedFile, 0, len(files))
	for _, f := range files {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	s.selected = out
}

func (s *State) SetAnchor(f *SelectedFile) {
	if f == nil {
		s.anchor = nil
		return
	}
	a := *f
	s.anchor = &a
}

// ClearDiffSelection drops the active path and any loaded file contents.
func (s *State) ClearDiffSelection() {
	s.activePath = ""
	s.diff = nil
}

// SelectCommit makes id the history cursor; the file selection restarts.
func (s *State) SelectCommit(id string) {
	if s.historyCommitID == id {
		return
	}
	s.historyCommitID = id
	s.ClearDiffSelection()
}

func (s *State) SelectCommitFile(path string) {
	if s.activePath != path {
		s.diff = nil
	}
	s.activePath = path
}

func (s *State) ClearHistorySelection() {
	s.historyCommitID = ""
	s.historyNavTarget = NavCommits
	s.activePath = ""
	s.selected = nil
	s.anchor = nil
	s.diff = nil
}

func (s *State) SetHistoryNavTarget(t NavTarget) { s.historyNavTarget = t }

func (s *State) ToggleStagedCollapsed()  { s.stagedCollapsed = !s.stagedCollapsed }
func (s *State) ToggleChangesCollapsed() { s.changesCollapsed = !s.changesCollapsed }

func (s *State) SetHistoryFilter(filter string) { s.historyFilter = filter }

func (s *State) SetDiffStyle(d DiffStyle) { s.diffStyle = d }

func (s *State) SetDiff(v *git.FileVersions) { s.diff = v }

func (s *State) SetRunningAction(id string) { s.runningAction = id }

func (s *State) SetError(msg string) { s.lastError = msg }

func (s *State) ClearError() { s.lastError = "" }

func (s *State) SetCommitMessage(msg string) { s.commitMessage = msg }

func (s *State) SetLastCommitID(id string) { s.lastCommitID = id }
