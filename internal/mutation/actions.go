package mutation

import "stagehand/internal/navigation"

// Fixed action ids for whole-group writes.
const (
	ActionStageAll       = "stage-all"
	ActionUnstageAll     = "unstage-all"
	ActionDiscardChanges = "discard-changes"
	ActionDiscardAll     = "discard-all"
	ActionCommit         = "commit"
)

const filePrefix = "file:"

func StageFileAction(path string) string   { return filePrefix + "stage:" + path }
func UnstageFileAction(path string) string { return filePrefix + "unstage:" + path }
func DiscardFileAction(path string) string { return filePrefix + "discard:" + path }

// PredictAfterStage picks the row to select once path leaves the changed
// list: the row after it, else the row before it. next is nil when there
// is no neighbour. listed is false when path is not in rows at all.
func PredictAfterStage(changed []navigation.Row, path string) (next *navigation.Row, listed bool) {
	i := -1
	for j, r := range changed {
		if r.Item.Path == path {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, false
	}
	switch {
	case i+1 < len(changed):
		r := changed[i+1]
		return &r, true
	case i > 0:
		r := changed[i-1]
		return &r, true
	}
	return nil, true
}
