package app

// paneWidths returns content widths, not outer widths, for the list pane
// and the diff area.
func paneWidths(totalWidth int, desiredLeft int, hideLeft bool, splitRight bool) (int, int) {
	if hideLeft {
		// Border overhead:
		//   split right panes => 3 (left + divider + right)
		//   single right pane => 2 (left + right)
		overhead := 2
		if splitRight {
			overhead = 3
		}
		available := totalWidth - overhead
		if available < 1 {
			return 0, 1
		}
		return 0, available
	}

	// Border overhead:
	//   list pane => 2 (left+right)
	//   right pane area =>
	//      split diff panes => 3 (outer left + shared divider + outer right)
	//      single diff pane => 2 (outer left + outer right)
	overhead := 4
	if splitRight {
		overhead = 5
	}
	available := totalWidth - overhead
	if available < 2 {
		return 1, 1
	}

	left := min(max(desiredLeft, 1), available-1)
	right := available - left
	return left, right
}

func splitRightPanes(totalWidth int) (int, int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left := max(totalWidth/2, 1)
	right := max(totalWidth-left, 1)
	return left, right
}

// listWindow returns the first visible line so that cursor stays inside a
// page of height lines, moving the previous top as little as possible.
func listWindow(top, cursor, total, height int) int {
	height = max(height, 1)
	maxTop := max(total-height, 0)
	if cursor >= 0 {
		if cursor < top {
			top = cursor
		}
		if cursor >= top+height {
			top = cursor - height + 1
		}
	}
	return min(max(top, 0), maxTop)
}
