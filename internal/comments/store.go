package comments

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Store owns the comment list. Every change goes through its methods.
// It is not safe for concurrent use.
type Store struct {
	items []Comment
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Replace swaps in a loaded list, dropping entries without an id.
func (s *Store) Replace(items []Comment) {
	s.items = compact(slices.Clone(items))
}

// Add creates a comment on target for r. The range is normalized and the
// text trimmed.
func (s *Store) Add(target Target, r Range, text string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrEmptyText
	}
	r = NormalizeRange(r)
	if r.Start <= 0 {
		return Comment{}, ErrEmptyRange
	}
	now := s.now()
	c := Comment{
		ID:        NewID(now),
		RepoPath:  target.RepoPath,
		FilePath:  target.FilePath,
		Bucket:    target.Bucket,
		StartLine: r.Start,
		EndLine:   r.End,
		Side:      r.Side,
		EndSide:   r.EndSide,
		Text:      text,
		CreatedAt: now,
	}
	s.items = append(compact(s.items), c)
	return c, nil
}

func (s *Store) Remove(id string) bool {
	s.items = compact(s.items)
	n := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(c Comment) bool { return c.ID == id })
	return len(s.items) != n
}

// Update replaces the text of id. Blank text is ignored.
func (s *Store) Update(id, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.items = compact(s.items)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Text = text
			return true
		}
	}
	return false
}

// RemoveRepo drops every comment of repo and returns how many went.
func (s *Store) RemoveRepo(repo string) int {
	n := len(s.items)
	s.items = slices.DeleteFunc(compact(s.items), func(c Comment) bool { return c.RepoPath == repo })
	return n - len(s.items)
}

func (s *Store) Get(id string) (Comment, bool) {
	for _, c := range s.items {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

func (s *Store) All() []Comment {
	return slices.Clone(s.items)
}

// ForRepo lists the comments of repo ordered by file then line.
func (s *Store) ForRepo(repo string) []Comment {
	return s.filter(func(c Comment) bool { return c.RepoPath == repo })
}

// ForFile lists the comments of one file ordered by line.
func (s *Store) ForFile(repo, file string) []Comment {
	return s.filter(func(c Comment) bool { return c.RepoPath == repo && c.FilePath == file })
}

// CountByFile maps each commented path in repo to its comment count.
func (s *Store) CountByFile(repo string) map[string]int {
	out := make(map[string]int)
	for _, c := range s.items {
		if c.RepoPath == repo {
			out[c.FilePath]++
		}
	}
	return out
}

// Annotations anchors each comment of the file at its end line.
func (s *Store) Annotations(repo, file string) []Annotation {
	var out []Annotation
	for _, c := range s.ForFile(repo, file) {
		side := c.EndSide
		if side == "" {
			side = c.Side
		}
		out = append(out, Annotation{CommentID: c.ID, Line: c.EndLine, Side: side, Text: c.Text})
	}
	return out
}

func (s *Store) filter(keep func(Comment) bool) []Comment {
	var out []Comment
	for _, c := range s.items {
		if keep(c) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Comment) int {
		return cmp.Or(
			cmp.Compare(a.FilePath, b.FilePath),
			cmp.Compare(a.StartLine, b.StartLine),
			cmp.Compare(a.EndLine, b.EndLine),
		)
	})
	return out
}

func compact(items []Comment) []Comment {
	return slices.DeleteFunc(items, func(c Comment) bool { return c.ID == "" })
}
