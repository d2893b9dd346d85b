package git

import (
	"errors"
	"strings"

	"stagehand/internal/util"
)

var ErrInvalidPath = errors.New("invalid repository path")

// CommandError is the structured failure returned by Service calls.
type CommandError struct {
	Op      string
	Message string
	Details string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Details == "" {
		return e.Op + ": " + e.Message
	}
	return e.Op + ": " + e.Message + " (" + e.Details + ")"
}

func (e *CommandError) Unwrap() error { return e.Err }

func commandError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return err
	}

	msg := err.Error()
	details := ""
	var runErr *util.RunError
	if errors.As(err, &runErr) {
		details = runErr.Name + " " + strings.Join(runErr.Args, " ")
		if out := firstLine(runErr.Output); out != "" {
			msg = out
		}
	}
	return &CommandError{Op: op, Message: msg, Details: details, Err: err}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
