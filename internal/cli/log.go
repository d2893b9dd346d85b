package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stagehand/internal/engine"
	"stagehand/internal/git"
)

func newLogCmd(svc services, opts *rootOptions) *cobra.Command {
	var grep string
	cmd := &cobra.Command{
		Use:   "log [repo...]",
		Short: "Print the recent commits of each repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return eachRepo(ctx, svc, opts, args, cmd.OutOrStdout(), func(ctl *engine.Controller, root string, w io.Writer) error {
				ctl.SetHistoryFilter(grep)
				if err := ctl.RefreshHistory(ctx); err != nil {
					return err
				}
				writeLog(w, root, ctl.VisibleCommits())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&grep, "grep", "g", "", "Only show commits whose summary, author or id contains this text")
	return cmd
}

func writeLog(w io.Writer, root string, commits []git.HistoryCommit) {
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintln(w, bold(root))
	if len(commits) == 0 {
		fmt.Fprintln(w, "No commits.")
		return
	}
	for _, c := range commits {
		fmt.Fprintf(w, "%s %s %s %s\n", yellow(c.ShortID), c.Summary, blue("("+c.RelativeTime+")"), faint(c.Author))
	}
}
