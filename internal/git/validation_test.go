package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRelPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "a.txt"},
		{path: "dir/sub/file.go"},
		{path: "dir/..hidden"},
		{path: "", wantErr: true},
		{path: "/etc/passwd", wantErr: true},
		{path: "../outside", wantErr: true},
		{path: "a/../../b", wantErr: true},
		{path: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateRelPath(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPath, "path %q", tt.path)
		} else {
			assert.NoError(t, err, "path %q", tt.path)
		}
	}
}

func TestValidateCommitID(t *testing.T) {
	assert.NoError(t, ValidateCommitID("abcd"))
	assert.NoError(t, ValidateCommitID("0123456789abcdef0123456789abcdef01234567"))
	assert.Error(t, ValidateCommitID("HEAD~1"))
	assert.Error(t, ValidateCommitID("abc"))
}

func TestCommandErrorMessageFromEmptyRepoPath(t *testing.T) {
	_, err := NewService().Snapshot(t.Context(), "  ")

	var ce *CommandError
	if assert.True(t, errors.As(err, &ce)) {
		assert.Equal(t, "repository path is empty", ce.Message)
	}
}
