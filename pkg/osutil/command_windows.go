//go:build windows

package osutil

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
)

// ToolCommand builds the command for an external tool. Node launchers and
// batch scripts are shims on Windows and must go through cmd.exe.
func ToolCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	if needsShell(name) {
		return exec.CommandContext(ctx, "cmd", append([]string{"/C", name}, args...)...)
	}
	return exec.CommandContext(ctx, name, args...)
}

func needsShell(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	switch base {
	case "npx", "npm":
		return true
	}
	ext := filepath.Ext(base)
	return ext == ".cmd" || ext == ".bat"
}
