package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stagehand/internal/cache"
	"stagehand/internal/comments"
	"stagehand/internal/config"
	"stagehand/internal/engine"
	"stagehand/internal/git"
	"stagehand/internal/logging"
	"stagehand/internal/selection"
)

// services are the collaborators the commands build a controller from.
type services struct {
	git         git.Service
	resolveRoot func(ctx context.Context, path string) (string, error)
	gitDir      func(ctx context.Context, root string) (string, error)
}

func defaultServices() services {
	return services{
		git:         git.NewService(),
		resolveRoot: git.DiscoverRepoRoot,
		gitDir:      git.DiscoverGitDir,
	}
}

type rootOptions struct {
	configPath   string
	logLevel     string
	historyLimit int
}

func Execute() error {
	root := newRootCmd(defaultServices())
	if err := root.Execute(); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func newRootCmd(svc services) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "stagehand [repo...]",
		Short: "Review, stage and commit git changes",
		Long: "Stagehand: browse working-tree changes and history of one or more " +
			"repositories side by side, stage and commit, and leave line comments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), svc, opts, args)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: $XDG_CONFIG_HOME/stagehand/config.json)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.IntVar(&opts.historyLimit, "history-limit", 0, "Number of commits loaded for history")

	root.AddCommand(newStatusCmd(svc, opts), newLogCmd(svc, opts))
	return root
}

// load reads the config file and applies the flag overrides.
func (o *rootOptions) load() (config.AppConfig, error) {
	var (
		cfg config.AppConfig
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		if _, err := logging.ParseLevel(o.logLevel); err != nil {
			return config.AppConfig{}, err
		}
		cfg.LogLevel = o.logLevel
	}
	switch {
	case o.historyLimit < 0:
		return config.AppConfig{}, fmt.Errorf("--history-limit must be positive, got %d", o.historyLimit)
	case o.historyLimit > 0:
		cfg.HistoryLimit = o.historyLimit
	}
	return cfg, nil
}

// repoPaths picks the repositories to open: arguments first, then the
// configured list, then the working directory.
func repoPaths(args []string, cfg config.AppConfig) (paths []string, explicit bool) {
	switch {
	case len(args) > 0:
		return args, true
	case len(cfg.Repos) > 0:
		return cfg.Repos, true
	}
	return []string{"."}, false
}

// newController builds the engine. Comments are persisted only for the
// interactive UI.
func newController(svc services, cfg config.AppConfig, log *zap.Logger, persist bool) (*engine.Controller, error) {
	opts := engine.Options{
		Cache: cache.Options{
			Size:         cfg.CacheSize,
			HistoryLimit: cfg.HistoryLimit,
		},
		DiffStyle:   selection.DiffStyle(cfg.DiffStyle),
		Logger:      log,
		ResolveRoot: svc.resolveRoot,
	}
	if persist && cfg.PersistEnabled() {
		file := comments.NewFile(cfg.CommentsFile)
		opts.Comments = &file
	}
	return engine.New(svc.git, opts)
}

// openRepos opens every path and returns the roots in order.
func openRepos(ctx context.Context, ctl *engine.Controller, paths []string) ([]string, error) {
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		root, err := ctl.OpenRepo(ctx, p)
		if err != nil {
			return roots, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}
