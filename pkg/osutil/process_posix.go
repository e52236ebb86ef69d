//go:build unix

package osutil

import (
	"errors"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// GracefulShutdownDelay is how long a cancelled process group gets to exit
// after SIGTERM before it is sent SIGKILL.
const GracefulShutdownDelay = 2 * time.Second

// SetProcessGroup configures the command to run in its own process group.
// This allows killing the entire process tree on timeout.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill sets up a cancel function that terminates the entire
// process group, escalating to SIGKILL after GracefulShutdownDelay.
// Must be called after SetProcessGroup and before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		pgid := -cmd.Process.Pid
		if err := unix.Kill(pgid, unix.SIGTERM); err != nil {
			if errors.Is(err, unix.ESRCH) {
				return nil
			}
			return err
		}
		time.AfterFunc(GracefulShutdownDelay, func() {
			_ = unix.Kill(pgid, unix.SIGKILL)
		})
		return nil
	}
}
