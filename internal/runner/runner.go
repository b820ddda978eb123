// Package runner executes the dcd CLI as a child process and captures its output.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"time"
)

// Constants for buffer sizes and limits.
const (
	// DefaultMaxBufferSize bounds the captured output kept in memory.
	DefaultMaxBufferSize = 10 * 1024 * 1024

	// SignalTimeout is the grace period between forwarding a signal and SIGKILL.
	SignalTimeout = 2 * time.Second

	// ExitCommandNotFound is the exit code reported when the program cannot be found.
	ExitCommandNotFound = 127
)

// ErrNonZeroExit is returned when a command completes but exits with a non-zero code.
// Use errors.Is(err, ErrNonZeroExit) to check for this condition.
var ErrNonZeroExit = errors.New("command exited with non-zero code")

// ExitCodeError wraps an exit code for programmatic access.
// Use errors.As(err, &ExitCodeError{}) to extract the exit code.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// Config configures a Runner.
type Config struct {
	// Out receives the child's combined stdout and stderr as it is produced.
	// Nil discards live output; it is captured either way.
	Out io.Writer

	// Err receives debug lines when Debug is set. Defaults to os.Stderr.
	Err   io.Writer
	Debug bool

	// MaxBufferSize bounds the captured output. Defaults to DefaultMaxBufferSize.
	MaxBufferSize int64

	// Dir is the working directory of the child. Empty means the current one.
	Dir string

	// Env is appended to the inherited environment.
	Env []string
}

// Result describes one finished process.
type Result struct {
	Command  string
	Output   []byte
	ExitCode int
	Duration time.Duration

	// Truncated is the number of output bytes dropped from the middle of Output.
	Truncated int64
}

// Runner runs commands one at a time.
type Runner struct {
	cfg Config
}

// New creates a Runner, filling defaults into cfg.
func New(cfg Config) *Runner {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	if cfg.MaxBufferSize <= 0 {
		cfg.MaxBufferSize = DefaultMaxBufferSize
	}
	return &Runner{cfg: cfg}
}

// Run executes name with args and waits for it to exit.
//
// Error semantics:
//   - Returns (result, nil) when the command exits 0
//   - Returns (result, error) when the command exits non-zero; the error wraps
//     ErrNonZeroExit and ExitCodeError
//   - Returns (result, error) for infrastructure failures (command not found,
//     start failure, context cancelled)
//
// The result is always non-nil and carries whatever output was captured.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, interruptSignals()...)
	defer signal.Stop(sigChan)

	return r.run(ctx, sigChan, name, args)
}

func (r *Runner) run(ctx context.Context, sigChan <-chan os.Signal, name string, args []string) (*Result, error) {
	start := time.Now()
	buf := newCaptureBuffer(r.cfg.MaxBufferSize)
	result := &Result{Command: strings.Join(append([]string{name}, args...), " ")}
	finish := func(code int, err error) (*Result, error) {
		result.Output = buf.Bytes()
		result.Truncated = buf.Dropped()
		result.ExitCode = code
		result.Duration = time.Since(start)
		return result, err
	}

	cmd := exec.Command(name, args...) // #nosec G204 - argv is assembled from validated inputs
	cmd.Dir = r.cfg.Dir
	cmd.Env = append(os.Environ(), r.cfg.Env...)
	out := io.MultiWriter(r.cfg.Out, buf)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = SignalTimeout
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		r.debugf("start failed: %v", err)
		return finish(exitCode(err), fmt.Errorf("starting %s: %w", name, err))
	}
	r.debugf("started pid %d: %s", cmd.Process.Pid, result.Command)

	cmdDone := make(chan struct{})
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- r.watch(ctx, sigChan, cmd, cmdDone)
	}()

	waitErr := cmd.Wait()
	close(cmdDone)
	interrupted := <-watchDone

	code := exitCode(waitErr)
	r.debugf("pid %d exited with code %d", cmd.Process.Pid, code)

	switch {
	case interrupted != nil:
		return finish(code, interrupted)
	case waitErr == nil:
		return finish(0, nil)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return finish(code, fmt.Errorf("%w: %w", ErrNonZeroExit, ExitCodeError{Code: code}))
	}
	return finish(code, waitErr)
}

// watch forwards interrupts and context cancellation to the child's process
// group until the child exits. It returns a non-nil error when the child was
// stopped by either.
func (r *Runner) watch(ctx context.Context, sigChan <-chan os.Signal, cmd *exec.Cmd, cmdDone <-chan struct{}) error {
	var cause error
	sig := terminateSignal()

	select {
	case <-cmdDone:
		return nil
	case s := <-sigChan:
		r.debugf("received %v, forwarding to pid %d", s, cmd.Process.Pid)
		sig = s
		cause = fmt.Errorf("interrupted by %v", s)
	case <-ctx.Done():
		r.debugf("context done, stopping pid %d", cmd.Process.Pid)
		cause = ctx.Err()
	}

	if err := killProcessGroup(cmd, sig); err != nil {
		r.debugf("signalling process group: %v", err)
	}

	select {
	case <-cmdDone:
	case <-time.After(SignalTimeout):
		r.debugf("pid %d still running after %s, sending SIGKILL", cmd.Process.Pid, SignalTimeout)
		_ = killProcessGroupWithSIGKILL(cmd)
		<-cmdDone
	}
	return cause
}

func (r *Runner) debugf(format string, args ...any) {
	if r.cfg.Debug {
		fmt.Fprintf(r.cfg.Err, "[DEBUG runner] "+format+"\n", args...)
	}
}

// exitCode maps a Start or Wait error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := getExitCodeFromError(exitErr); ok && code >= 0 {
			return code
		}
		return 1
	}

	if isCommandNotFoundError(err) {
		return ExitCommandNotFound
	}
	return 1
}

// isCommandNotFoundError checks if the error indicates the command was not found.
func isCommandNotFoundError(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	if strings.Contains(errStr, "executable file not found") {
		return true
	}
	return runtime.GOOS != "windows" && strings.Contains(errStr, "no such file or directory")
}
