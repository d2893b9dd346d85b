package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RunError describes a command that exited unsuccessfully.
type RunError struct {
	Name     string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("command failed: %s %s: %v (%s)", e.Name, strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *RunError) Unwrap() error { return e.Err }

func Run(ctx context.Context, cwd string, name string, args ...string) (string, error) {
	return run(ctx, cwd, nil, name, args...)
}

// RunOutput runs a command and returns stdout only. Stderr is kept for the
// error report.
func RunOutput(ctx context.Context, cwd string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), newRunError(name, args, strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

func run(ctx context.Context, cwd string, stdin *strings.Reader, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	if stdin != nil {
		cmd.Stdin = stdin
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), newRunError(name, args, strings.TrimSpace(string(out)), err)
	}

	return string(out), nil
}

func newRunError(name string, args []string, output string, err error) *RunError {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &RunError{
		Name:     name,
		Args:     args,
		ExitCode: code,
		Output:   output,
		Err:      err,
	}
}
