package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagehand/internal/config"
	"stagehand/internal/git"
	"stagehand/internal/git/gittest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testServices(fake *gittest.Fake) services {
	return services{
		git:         fake,
		resolveRoot: func(_ context.Context, p string) (string, error) { return p, nil },
	}
}

// run executes the command tree with a config file that turns off
// persistence, and returns stdout.
func run(t *testing.T, fake *gittest.Fake, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"watch": false, "persist_comments": false}`), 0o644))

	root := newRootCmd(testServices(fake))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{args[0], "--config", cfgPath}, args[1:]...))
	err := root.Execute()
	return out.String(), err
}

func TestStatusPrintsBuckets(t *testing.T) {
	fake := gittest.New()
	fake.SetSnapshot("/work/repo", git.Snapshot{
		Branch: "main",
		Staged: []git.FileItem{
			{Path: "a.go", Status: git.StatusModified},
			{Path: "new.go", Status: git.StatusRenamed, PreviousPath: "old.go"},
		},
		Unstaged:  []git.FileItem{{Path: "b.go", Status: git.StatusDeleted}},
		Untracked: []git.FileItem{{Path: "c.txt", Status: git.StatusUntracked}},
	})

	out, err := run(t, fake, "status", "/work/repo")
	require.NoError(t, err)

	assert.Contains(t, out, "/work/repo ⎇ main\n")
	assert.Contains(t, out, "Staged changes (2):\n\tM a.go\n\tR old.go → new.go\n")
	assert.Contains(t, out, "Changes (1):\n\tD b.go\n")
	assert.Contains(t, out, "Untracked files (1):\n\t? c.txt\n")
}

func TestStatusCleanTree(t *testing.T) {
	fake := gittest.New()
	fake.SetSnapshot("/work/repo", git.Snapshot{Branch: "main"})

	out, err := run(t, fake, "status", "/work/repo")
	require.NoError(t, err)
	assert.Equal(t, "/work/repo ⎇ main\nNo changes detected (working tree clean)\n", out)
}

func TestStatusSeparatesRepos(t *testing.T) {
	fake := gittest.New()
	fake.SetSnapshot("/work/one", git.Snapshot{Branch: "main"})
	fake.SetSnapshot("/work/two", git.Snapshot{})

	out, err := run(t, fake, "status", "/work/one", "/work/two")
	require.NoError(t, err)
	assert.Equal(t,
		"/work/one ⎇ main\nNo changes detected (working tree clean)\n\n"+
			"/work/two ⎇ (detached)\nNo changes detected (working tree clean)\n",
		out)
}

func TestStatusReportsFailure(t *testing.T) {
	fake := gittest.New()
	fake.SetSnapshot("/work/repo", git.Snapshot{})
	fake.Fail(gittest.OpSnapshot, &git.CommandError{Op: "status", Message: "index is locked"})

	_, err := run(t, fake, "status", "/work/repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/work/repo")
}

func TestLogHonorsLimitAndGrep(t *testing.T) {
	fake := gittest.New()
	fake.SetHistory("/work/repo", []git.HistoryCommit{
		{CommitID: "c3", ShortID: "c3", Summary: "Add parser", Author: "Ana", RelativeTime: "1 hour ago"},
		{CommitID: "c2", ShortID: "c2", Summary: "Fix parser", Author: "Ben", RelativeTime: "2 hours ago"},
		{CommitID: "c1", ShortID: "c1", Summary: "Initial commit", Author: "Ana", RelativeTime: "3 days ago"},
	})

	out, err := run(t, fake, "log", "--history-limit", "2", "/work/repo")
	require.NoError(t, err)
	assert.Equal(t, "/work/repo\nc3 Add parser (1 hour ago) Ana\nc2 Fix parser (2 hours ago) Ben\n", out)

	out, err = run(t, fake, "log", "--grep", "ana", "/work/repo")
	require.NoError(t, err)
	assert.Equal(t, "/work/repo\nc3 Add parser (1 hour ago) Ana\nc1 Initial commit (3 days ago) Ana\n", out)

	out, err = run(t, fake, "log", "--grep", "nothing", "/work/repo")
	require.NoError(t, err)
	assert.Equal(t, "/work/repo\nNo commits.\n", out)
}

func TestLoadAppliesFlags(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"history_limit": 50, "log_level": "warn"}`), 0o644))

	cfg, err := (&rootOptions{configPath: cfgPath, logLevel: "debug", historyLimit: 10}).load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.HistoryLimit)

	cfg, err = (&rootOptions{configPath: cfgPath}).load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 50, cfg.HistoryLimit)

	_, err = (&rootOptions{configPath: cfgPath, logLevel: "loud"}).load()
	assert.Error(t, err)

	_, err = (&rootOptions{configPath: cfgPath, historyLimit: -1}).load()
	assert.Error(t, err)
}

func TestRepoPaths(t *testing.T) {
	paths, explicit := repoPaths([]string{"a"}, config.AppConfig{Repos: []string{"b"}})
	assert.Equal(t, []string{"a"}, paths)
	assert.True(t, explicit)

	paths, explicit = repoPaths(nil, config.AppConfig{Repos: []string{"b"}})
	assert.Equal(t, []string{"b"}, paths)
	assert.True(t, explicit)

	paths, explicit = repoPaths(nil, config.AppConfig{})
	assert.Equal(t, []string{"."}, paths)
	assert.False(t, explicit)
}
