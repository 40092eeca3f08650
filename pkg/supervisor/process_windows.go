//go:build windows

package supervisor

import (
	"os"
	"os/exec"
)

// setProcAttr is a no-op on Windows; there is no process group to create.
func setProcAttr(cmd *exec.Cmd) {}

// sendStopSignal has no graceful equivalent on Windows; the process is
// terminated regardless of the configured signal.
func sendStopSignal(proc *os.Process, name string) error {
	return proc.Kill()
}

// killGroup terminates the child process.
func killGroup(proc *os.Process) error {
	return proc.Kill()
}
