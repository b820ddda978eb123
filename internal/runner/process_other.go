//go:build !unix

package runner

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op without Unix process groups.
func setProcessGroup(*exec.Cmd) {}

// killProcessGroup signals the child directly.
func killProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(sig)
}

// killProcessGroupWithSIGKILL kills the child directly.
func killProcessGroupWithSIGKILL(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// getExitCodeFromError uses ProcessState.ExitCode, available on every platform.
func getExitCodeFromError(exitErr *exec.ExitError) (int, bool) {
	if exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode(), true
	}
	return 0, false
}

func interruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

func terminateSignal() os.Signal {
	return os.Kill
}
