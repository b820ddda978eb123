package magetasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/runner"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
)

// Out receives task output. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

var theme = render.ThemeByName(os.Getenv("DCD_THEME"))

// PrintH1Header prints a top-level header with decoration.
func PrintH1Header(title string) {
	width := 80
	rule := strings.Repeat("=", width)
	padding := max((width-len(title))/2, 0)
	fmt.Fprintf(Out, "\n%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", padding), theme.Bold.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintf(Out, "\n%s\n\n", theme.Primary.Render("=== "+title+" ==="))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, theme.Success.Render(theme.Icons.Pass+" "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(Out, theme.Warning.Render(theme.Icons.Cancel+" "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(Out, theme.Error.Render(theme.Icons.Fail+" "+msg))
}

// PrintInfo prints an info message.
func PrintInfo(msg string) {
	fmt.Fprintln(Out, theme.Muted.Render(theme.Icons.Info+" "+msg))
}

// Run executes name with args, streaming its output, and prints a one-line
// result labelled with label.
func Run(label, name string, args ...string) error {
	return RunEnv(label, nil, name, args...)
}

// RunEnv is Run with extra environment variables for the child.
func RunEnv(label string, env []string, name string, args ...string) error {
	r := runner.New(runner.Config{Out: Out, Env: env, Dir: ProjectRoot})
	result, err := r.Run(context.Background(), name, args...)
	if err != nil {
		if IsCommandNotFound(err) {
			return fmt.Errorf("%s: %w", label, err)
		}
		PrintError(fmt.Sprintf("%s failed (%s)", label, result.Duration.Round(time.Millisecond)))
		return fmt.Errorf("%s: %w", label, err)
	}
	PrintSuccess(fmt.Sprintf("%s (%s)", label, result.Duration.Round(time.Millisecond)))
	return nil
}

// IsCommandNotFound reports whether err means the program is not installed.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var code runner.ExitCodeError
	if errors.As(err, &code) && code.Code == runner.ExitCommandNotFound {
		return true
	}
	return strings.Contains(err.Error(), "executable file not found")
}
