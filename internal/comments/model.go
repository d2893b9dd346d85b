package comments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stagehand/internal/git"
)

var (
	ErrEmptyText  = errors.New("comment text is empty")
	ErrEmptyRange = errors.New("comment range is empty")
)

// Side is the diff column a line number refers to.
type Side string

const (
	SideDeletions Side = "deletions"
	SideAdditions Side = "additions"
)

func (s Side) String() string { return string(s) }

// Range is a selected span of lines, possibly given end first.
type Range struct {
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Side    Side `json:"side"`
	EndSide Side `json:"end_side,omitempty"`
}

// NormalizeRange orders the endpoints so Start <= End and fills EndSide.
func NormalizeRange(r Range) Range {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	if r.EndSide == "" {
		r.EndSide = r.Side
	}
	return r
}

// FormatRange renders "L5" for a single line and "L5-9" for a span.
func FormatRange(start, end int) string {
	if start == end {
		return fmt.Sprintf("L%d", start)
	}
	return fmt.Sprintf("L%d-%d", start, end)
}

// Target names the file a comment is attached to.
type Target struct {
	RepoPath string
	FilePath string
	Bucket   git.Bucket
}

type Comment struct {
	ID        string     `json:"id"`
	RepoPath  string     `json:"repo_path"`
	FilePath  string     `json:"file_path"`
	Bucket    git.Bucket `json:"bucket"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Side      Side       `json:"side"`
	EndSide   Side       `json:"end_side"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// Reference is the "@path#L5-9" form used when copying comments.
func (c Comment) Reference() string {
	return "@" + c.FilePath + "#" + FormatRange(c.StartLine, c.EndLine)
}

// Annotation is a comment pinned to the last line of its range.
type Annotation struct {
	CommentID string
	Line      int
	Side      Side
	Text      string
}

// NewID returns a millisecond timestamp with a random suffix.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
