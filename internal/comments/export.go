package comments

import "strings"

// Format renders comments for the clipboard, one per line:
// "@<path>#L<start>[-<end>] - <text>".
func Format(comments []Comment) string {
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, c.Reference()+" - "+c.Text)
	}
	return strings.Join(lines, "\n")
}
