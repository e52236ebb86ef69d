//go:build windows

package osutil

import (
	"errors"
	"os"
	"os/exec"
	"time"
)

// GracefulShutdownDelay is defined for API consistency; Windows processes
// are terminated immediately.
const GracefulShutdownDelay = 2 * time.Second

// SetProcessGroup is a no-op on Windows.
func SetProcessGroup(_ *exec.Cmd) {}

// SetProcessGroupKill sets up a cancel function that terminates the process.
// Child processes may survive since Windows has no Unix-style process groups.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Kill); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		return nil
	}
}
