//go:build unix

package proc

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminateProcess asks the process to exit. SIGTERM gives the agent CLI a
// chance to flush its final messages before the grace-period kill.
func terminateProcess(proc *os.Process) error {
	return proc.Signal(unix.SIGTERM)
}
