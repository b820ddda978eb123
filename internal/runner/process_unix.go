//go:build unix

package runner

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own process group so npx and the
// node process it spawns can be signalled together.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends sig to the child's process group.
func killProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	sigVal, ok := sig.(syscall.Signal)
	if !ok {
		return cmd.Process.Signal(sig)
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(sig)
	}
	return syscall.Kill(-pgid, sigVal)
}

// killProcessGroupWithSIGKILL sends SIGKILL to the child's process group.
func killProcessGroupWithSIGKILL(cmd *exec.Cmd) error {
	return killProcessGroup(cmd, syscall.SIGKILL)
}

// getExitCodeFromError extracts the exit status from a wait error.
func getExitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		return ws.ExitStatus(), true
	}
	return 0, false
}

func interruptSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

func terminateSignal() os.Signal {
	return syscall.SIGTERM
}
