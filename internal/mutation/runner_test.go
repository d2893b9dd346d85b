package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/git"
	"stagehand/internal/navigation"
)

type fakeStore struct {
	running string
	err     string
}

func (s *fakeStore) RunningAction() string { return s.running }
func (s *fakeStore) SetRunningAction(id string) { s.running = id }
func (s *fakeStore) SetError(msg string) { s.err = msg }
func (s *fakeStore) ClearError() { s.err = "" }

func newTestRunner() (*Runner, *fakeStore, *sync.Mutex) {
	mu := &sync.Mutex{}
	store := &fakeStore{}
	return NewRunner(mu, store, nil), store, mu
}

func TestRunSuccess(t *testing.T) {
	r, store, _ := newTestRunner()
	store.err = "old failure"
	var order []string

	err := r.Run(context.Background(), Action{
		ID:      ActionStageAll,
		Prepare: func() { order = append(order, "prepare") },
		Do: func(context.Context) error {
			order = append(order, "do:"+store.running)
			assert.Empty(t, store.err)
			return nil
		},
		Done: func() { order = append(order, "done") },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"prepare", "do:stage-all", "done"}, order)
	assert.Empty(t, store.running)
	assert.Empty(t, store.err)
}

func TestRunFailureStoresMessage(t *testing.T) {
	r, store, _ := newTestRunner()
	prepared := false
	failure := &git.CommandError{Op: "stage", Message: "pathspec did not match", Details: "git add"}

	err := r.Run(context.Background(), Action{
		ID:      StageFileAction("a.txt"),
		Prepare: func() { prepared = true },
		Do:      func(context.Context) error { return fmt.Errorf("stage a.txt: %w", failure) },
		Done:    func() { t.Fatal("done must not run on failure") },
	})

	require.ErrorIs(t, err, failure)
	assert.True(t, prepared)
	assert.Empty(t, store.running)
	assert.Equal(t, "pathspec did not match", store.err)
}

func TestRunDropsConcurrentAction(t *testing.T) {
	r, store, _ := newTestRunner()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- r.Run(context.Background(), Action{
			ID: ActionDiscardChanges,
			Do: func(context.Context) error {
				close(entered)
				<-release
				return nil
			},
		})
	}()
	<-entered

	calls := 0
	prepared := false
	err := r.Run(context.Background(), Action{
		ID:      StageFileAction("a.txt"),
		Prepare: func() { prepared = true },
		Do: func(context.Context) error {
			calls++
			return nil
		},
	})
	require.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, calls)
	assert.False(t, prepared)

	close(release)
	require.NoError(t, <-done)
	assert.Empty(t, store.running)
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "bad", Message(&git.CommandError{Op: "x", Message: "bad"}))
	assert.Equal(t, "x: ", Message(&git.CommandError{Op: "x"}))
}

func TestActionIDs(t *testing.T) {
	assert.Equal(t, "file:stage:dir/a.txt", StageFileAction("dir/a.txt"))
	assert.Equal(t, "file:unstage:a.txt", UnstageFileAction("a.txt"))
	assert.Equal(t, "file:discard:a.txt", DiscardFileAction("a.txt"))
}

func changed(paths ...string) []navigation.Row {
	var rows []navigation.Row
	for _, p := range paths {
		rows = append(rows, navigation.Row{Bucket: git.BucketUnstaged, Item: git.FileItem{Path: p}})
	}
	return rows
}

func TestPredictAfterStage(t *testing.T) {
	tests := []struct {
		name   string
		rows   []navigation.Row
		path   string
		want   string
		listed bool
	}{
		{name: "next", rows: changed("a", "b", "c"), path: "b", want: "c", listed: true},
		{name: "previous at end", rows: changed("a", "b", "c"), path: "c", want: "b", listed: true},
		{name: "sole file", rows: changed("a"), path: "a", want: "", listed: true},
		{name: "not listed", rows: changed("a"), path: "z", want: ""},
		{name: "empty", rows: nil, path: "a", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, listed := PredictAfterStage(tt.rows, tt.path)
			assert.Equal(t, tt.listed, listed)
			if tt.want == "" {
				assert.Nil(t, next)
				return
			}
			require.NotNil(t, next)
			assert.Equal(t, tt.want, next.Item.Path)
		})
	}
}
