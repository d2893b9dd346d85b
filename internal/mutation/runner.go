// Package mutation runs one write against the git layer at a time.
package mutation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"stagehand/internal/git"
)

// ErrBusy is returned when an action is dropped because another is running.
var ErrBusy = errors.New("another action is running")

// Store is the part of the selection state the runner owns.
type Store interface {
	RunningAction() string
	SetRunningAction(id string)
	SetError(msg string)
	ClearError()
}

// Action is one write. Prepare and Done run under the state lock; Do runs
// outside it.
type Action struct {
	ID string
	// Prepare applies optimistic state before the write is issued.
	Prepare func()
	Do      func(ctx context.Context) error
	// Done runs after a successful write.
	Done func()
}

type Runner struct {
	mu    sync.Locker
	store Store
	log   *zap.Logger
}

// NewRunner returns a runner that guards store with mu. The same lock must
// protect every other access to store.
func NewRunner(mu sync.Locker, store Store, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{mu: mu, store: store, log: log.Named("mutation")}
}

// Run executes a unless another action is running, in which case nothing
// changes and ErrBusy is returned. A failed write stores its message as the
// current error; Prepare's changes are not rolled back.
func (r *Runner) Run(ctx context.Context, a Action) error {
	r.mu.Lock()
	if running := r.store.RunningAction(); running != "" {
		r.mu.Unlock()
		r.log.Debug("action dropped", zap.String("action", a.ID), zap.String("running", running))
		return ErrBusy
	}
	if a.Prepare != nil {
		a.Prepare()
	}
	r.store.SetRunningAction(a.ID)
	r.store.ClearError()
	r.mu.Unlock()

	r.log.Info("action started", zap.String("action", a.ID))
	err := a.Do(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.SetRunningAction("")
	if err != nil {
		r.store.SetError(Message(err))
		r.log.Warn("action failed", zap.String("action", a.ID), zap.Error(err))
		return err
	}
	if a.Done != nil {
		a.Done()
	}
	r.log.Info("action finished", zap.String("action", a.ID))
	return nil
}

// Message is the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *git.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Message != "" {
		return cmdErr.Message
	}
	return err.Error()
}
