package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stagehand/internal/engine"
	"stagehand/internal/git"
	"stagehand/internal/logging"
)

func newStatusCmd(svc services, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [repo...]",
		Short: "Print the working-tree changes of each repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return eachRepo(ctx, svc, opts, args, cmd.OutOrStdout(), func(ctl *engine.Controller, root string, w io.Writer) error {
				if err := ctl.RefreshSnapshot(ctx); err != nil {
					return err
				}
				snap, _ := ctl.Snapshot()
				writeStatus(w, root, snap)
				return nil
			})
		},
	}
}

// eachRepo opens the repositories headlessly and runs fn with each one
// active in turn. Output blocks are separated by a blank line.
func eachRepo(ctx context.Context, svc services, opts *rootOptions, args []string, w io.Writer, fn func(ctl *engine.Controller, root string, w io.Writer) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctl, err := newController(svc, cfg, log, false)
	if err != nil {
		return err
	}
	paths, _ := repoPaths(args, cfg)
	roots, err := openRepos(ctx, ctl, paths)
	if err != nil {
		return err
	}

	for i, root := range roots {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := ctl.SetActiveRepo(root); err != nil {
			return err
		}
		if err := fn(ctl, root, w); err != nil {
			log.Warn("headless command failed", zap.String("repo", root), zap.Error(err))
			return fmt.Errorf("%s: %w", root, err)
		}
	}
	return nil
}

func writeStatus(w io.Writer, root string, snap git.Snapshot) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	branch := snap.Branch
	if branch == "" {
		branch = "(detached)"
	}
	fmt.Fprintf(w, "%s %s\n", bold(root), cyan("⎇ "+branch))

	if len(snap.Staged)+len(snap.Unstaged)+len(snap.Untracked) == 0 {
		fmt.Fprintln(w, "No changes detected (working tree clean)")
		return
	}

	section := func(title string, items []git.FileItem, paint func(a ...interface{}) string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s (%d):\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "\t%s %s\n", paint(git.StatusLetter(item.Status)), displayPath(item))
		}
	}
	section("Staged changes", snap.Staged, green)
	section("Changes", snap.Unstaged, red)
	section("Untracked files", snap.Untracked, yellow)
}

func displayPath(item git.FileItem) string {
	if item.PreviousPath != "" && item.PreviousPath != item.Path {
		return item.PreviousPath + " → " + item.Path
	}
	return item.Path
}
