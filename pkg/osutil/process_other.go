//go:build !unix && !windows

package osutil

import (
	"os/exec"
	"time"
)

// GracefulShutdownDelay matches the other platforms; there is no signal to
// wait on here.
const GracefulShutdownDelay = 2 * time.Second

// SetProcessGroup is a no-op where process groups are unavailable.
func SetProcessGroup(_ *exec.Cmd) {}

// SetProcessGroupKill keeps the exec default of killing the process itself.
func SetProcessGroupKill(_ *exec.Cmd) {}
