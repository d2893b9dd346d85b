package cli

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"stagehand/internal/app"
	"stagehand/internal/engine"
	"stagehand/internal/logging"
	"stagehand/internal/watch"
)

func runUI(ctx context.Context, svc services, opts *rootOptions, args []string) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctl, err := newController(svc, cfg, log, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, explicit := repoPaths(args, cfg)
	roots, err := openRepos(ctx, ctl, paths)
	if err != nil {
		if explicit {
			return err
		}
		// Started outside a repository: the UI shows the empty state.
		log.Info("no repository in working directory", zap.Error(err))
	}
	if len(roots) > 0 {
		if err := ctl.SetActiveRepo(roots[0]); err != nil {
			return err
		}
	}

	p := tea.NewProgram(app.NewModel(ctx, ctl), tea.WithAltScreen())
	ctl.SetOnChange(app.Forward(ctx, p))

	if cfg.WatchEnabled() {
		startWatchers(ctx, svc, ctl, roots, cfg.WatchDebounce(), log)
	}

	_, err = p.Run()
	return err
}

// startWatchers refreshes a repository's snapshot whenever its files change.
// A repository that cannot be watched is still usable with manual refresh.
func startWatchers(ctx context.Context, svc services, ctl *engine.Controller, roots []string, debounce time.Duration, log *zap.Logger) {
	onChange := func(root string) {
		if err := ctl.WorktreeChanged(ctx, root); err != nil && !errors.Is(err, context.Canceled) {
			log.Debug("refresh after change failed", zap.String("repo", root), zap.Error(err))
		}
	}
	for _, root := range roots {
		w, err := watch.New(root, debounce, onChange, log)
		if err != nil {
			log.Warn("cannot watch repository", zap.String("repo", root), zap.Error(err))
			continue
		}
		if svc.gitDir != nil {
			if dir, err := svc.gitDir(ctx, root); err == nil {
				if err := w.AddGitDir(dir); err != nil {
					log.Warn("cannot watch git directory", zap.String("dir", dir), zap.Error(err))
				}
			}
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Warn("watcher stopped", zap.String("repo", root), zap.Error(err))
			}
		}()
	}
}
