package util

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunWithStdinEchoesInput(t *testing.T) {
	requireSh(t)

	out, err := RunWithStdin(context.Background(), "", "hello", "sh", "-c", "cat")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRunReportsExitCode(t *testing.T) {
	requireSh(t)

	_, err := Run(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 3, runErr.ExitCode)
	assert.Equal(t, "boom", runErr.Output)
}

func TestRunOutputSeparatesStderr(t *testing.T) {
	requireSh(t)

	out, err := RunOutput(context.Background(), "", "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out))
}
