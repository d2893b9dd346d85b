package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaneWidths(t *testing.T) {
	tests := []struct {
		name        string
		hideLeft    bool
		splitRight  bool
		left, right int
	}{
		{"split with list", false, true, 40, 75},
		{"single with list", false, false, 40, 76},
		{"split hidden list", true, true, 0, 117},
		{"single hidden list", true, false, 0, 118},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := paneWidths(120, 40, tt.hideLeft, tt.splitRight)
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.right, right)
		})
	}
}

func TestPaneWidthsClampsNarrowTerminals(t *testing.T) {
	left, right := paneWidths(30, 40, false, true)
	assert.Equal(t, 24, left)
	assert.Equal(t, 1, right)

	left, right = paneWidths(5, 40, false, true)
	assert.Equal(t, 1, left)
	assert.Equal(t, 1, right)
}

func TestListWindow(t *testing.T) {
	assert.Equal(t, 0, listWindow(0, 3, 20, 10))
	assert.Equal(t, 6, listWindow(0, 15, 20, 10))
	assert.Equal(t, 2, listWindow(5, 2, 20, 10))
	assert.Equal(t, 10, listWindow(18, 19, 20, 10), "never scrolls past the end")
	assert.Equal(t, 0, listWindow(4, -1, 3, 10))
}
