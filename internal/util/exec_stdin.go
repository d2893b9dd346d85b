package util

import (
	"context"
	"strings"
)

func RunWithStdin(ctx context.Context, cwd, stdin, name string, args ...string) (string, error) {
	return run(ctx, cwd, strings.NewReader(stdin), name, args...)
}
