package navigation

import (
	"slices"

	"stagehand/internal/selection"
)

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Step returns the index one row away from current in a list of n rows.
// An unknown current (negative or out of range) lands on the first row
// going forward and the last going back. The result never wraps. ok is
// false only when the list is empty.
func Step(current, n int, dir Direction) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	if current < 0 || current >= n {
		if dir == Prev {
			return n - 1, true
		}
		return 0, true
	}
	return clamp(current+int(dir), 0, n-1), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Extension is the outcome of a range extend.
type Extension struct {
	Selected []selection.SelectedFile
	// Anchor is set when the anchor had to be reset to the target.
	Anchor *selection.SelectedFile
}

// ExtendRange selects the rows between the anchor and target inclusive.
// The anchor falls back to active, then to target. Previously selected
// files that are not visible stay selected. When either end is not
// visible the selection collapses to the target and the anchor resets.
func ExtendRange(rows []Row, previous []selection.SelectedFile, anchor, active *selection.SelectedFile, target selection.SelectedFile) Extension {
	from := target
	switch {
	case anchor != nil:
		from = *anchor
	case active != nil:
		from = *active
	}

	ai, ti := IndexOfFile(rows, from), IndexOfFile(rows, target)
	if ai < 0 || ti < 0 {
		t := target
		return Extension{Selected: []selection.SelectedFile{target}, Anchor: &t}
	}

	lo, hi := min(ai, ti), max(ai, ti)
	var out []selection.SelectedFile
	for _, f := range previous {
		if IndexOfFile(rows, f) < 0 && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	for _, r := range rows[lo : hi+1] {
		if f := r.File(); !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return Extension{Selected: out}
}
