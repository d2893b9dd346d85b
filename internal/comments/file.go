package comments

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// File persists comments as a JSON array.
type File struct {
	path string
}

func NewFile(path string) File {
	return File{path: path}
}

func (f File) Path() string { return f.path }

func (f File) Load() ([]Comment, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Comment{}, nil
		}
		return nil, err
	}

	var out []Comment
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f File) Save(comments []Comment) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if comments == nil {
		comments = []Comment{}
	}

	b, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
