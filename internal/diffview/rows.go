package diffview

type Side int

const (
	SideOld Side = iota
	SideNew
)

type RowKind int

const (
	RowContext RowKind = iota
	RowDelete
	RowAdd
	RowChange
	RowHunkHeader
)

// DiffRow is one aligned line pair of a diff. A nil line number means the
// side has no content in that row.
type DiffRow struct {
	Kind    RowKind
	OldLine *int
	NewLine *int
	OldText string
	NewText string
	Path    string
	HunkID  int
}

// IsHeader reports whether the row carries no file content.
func (r DiffRow) IsHeader() bool { return r.Kind == RowHunkHeader }

// Line returns the line number of side, if the row has one.
func (r DiffRow) Line(side Side) (int, bool) {
	p := r.NewLine
	if side == SideOld {
		p = r.OldLine
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Text returns the content of side.
func (r DiffRow) Text(side Side) string {
	if side == SideOld {
		return r.OldText
	}
	return r.NewText
}

// FirstContentRow returns the index of the first non-header row, or -1.
func FirstContentRow(rows []DiffRow) int {
	for i, row := range rows {
		if !row.IsHeader() {
			return i
		}
	}
	return -1
}
