//go:build !unix

package proc

import "os"

// terminateProcess stops the process. Windows has no SIGTERM equivalent that
// console subprocesses reliably handle, so this kills outright.
func terminateProcess(proc *os.Process) error {
	return proc.Kill()
}
