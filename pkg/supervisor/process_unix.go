//go:build !windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcAttr puts the child in its own process group so stop signals reach
// the whole tree it spawns, not just the immediate child.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// sendStopSignal delivers the named signal to the child's process group.
func sendStopSignal(proc *os.Process, name string) error {
	return signalGroup(proc, parseSignal(name))
}

// killGroup forcibly terminates the child's process group.
func killGroup(proc *os.Process) error {
	return signalGroup(proc, syscall.SIGKILL)
}

// signalGroup signals the whole process group, falling back to the process
// itself if the group is already gone.
func signalGroup(proc *os.Process, sig syscall.Signal) error {
	if err := syscall.Kill(-proc.Pid, sig); err != nil {
		return proc.Signal(sig)
	}
	return nil
}

// parseSignal maps a configured signal name to its syscall signal. Config
// validation restricts the set; unknown names fall back to SIGTERM.
func parseSignal(name string) syscall.Signal {
	switch name {
	case "INT":
		return syscall.SIGINT
	case "QUIT":
		return syscall.SIGQUIT
	case "HUP":
		return syscall.SIGHUP
	case "KILL":
		return syscall.SIGKILL
	default:
		return syscall.SIGTERM
	}
}
