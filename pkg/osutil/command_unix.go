//go:build !windows

package osutil

import (
	"context"
	"os/exec"
)

// ToolCommand builds the command for an external tool.
func ToolCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
