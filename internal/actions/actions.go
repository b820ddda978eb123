// Package actions speaks the GitHub Actions runner protocol: workflow
// commands on stdout plus the GITHUB_OUTPUT and GITHUB_STEP_SUMMARY files.
package actions

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Output names published by the action.
const (
	OutputConsoleURL   = "DEVICE_CLOUD_CONSOLE_URL"
	OutputAppBinaryID  = "DEVICE_CLOUD_APP_BINARY_ID"
	OutputUploadStatus = "DEVICE_CLOUD_UPLOAD_STATUS"
	OutputFlowResults  = "DEVICE_CLOUD_FLOW_RESULTS"
)

// Outputs lists every output name the action publishes.
var Outputs = []string{OutputConsoleURL, OutputAppBinaryID, OutputUploadStatus, OutputFlowResults}

// Environment variables set by the runner.
const (
	EnvOutput      = "GITHUB_OUTPUT"
	EnvStepSummary = "GITHUB_STEP_SUMMARY"
	EnvRunnerDebug = "RUNNER_DEBUG"
)

// Actions writes workflow commands to Out and files named by the environment.
type Actions struct {
	Out   io.Writer
	Debug bool

	// Getenv looks up runner variables. Defaults to os.Getenv.
	Getenv func(string) string

	delimiter func() string
}

// New returns Actions writing to out. Debug is also enabled by RUNNER_DEBUG=1.
func New(out io.Writer, debug bool) *Actions {
	if out == nil {
		out = os.Stdout
	}
	return &Actions{
		Out:       out,
		Debug:     debug || os.Getenv(EnvRunnerDebug) == "1",
		Getenv:    os.Getenv,
		delimiter: func() string { return "ghadelimiter_" + uuid.NewString() },
	}
}

func (a *Actions) getenv(key string) string {
	if a.Getenv == nil {
		return os.Getenv(key)
	}
	return a.Getenv(key)
}

// SetOutput publishes a step output. Without GITHUB_OUTPUT the legacy
// set-output command is printed instead.
func (a *Actions) SetOutput(name, value string) error {
	path := a.getenv(EnvOutput)
	if path == "" {
		a.command("set-output", map[string]string{"name": name}, value)
		return nil
	}

	delim := a.newDelimiter()
	if strings.Contains(name, delim) || strings.Contains(value, delim) {
		return fmt.Errorf("output %s: value contains delimiter %s", name, delim)
	}
	return appendFile(path, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim))
}

func (a *Actions) newDelimiter() string {
	if a.delimiter == nil {
		return "ghadelimiter_" + uuid.NewString()
	}
	return a.delimiter()
}

// AppendSummary appends markdown to the job summary. It is a no-op outside a runner.
func (a *Actions) AppendSummary(markdown string) error {
	path := a.getenv(EnvStepSummary)
	if path == "" {
		return nil
	}
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return appendFile(path, markdown)
}

// AddMask registers a value the runner scrubs from the log.
func (a *Actions) AddMask(value string) {
	if value == "" {
		return
	}
	a.command("add-mask", nil, value)
}

func (a *Actions) Debugf(format string, args ...any) {
	if a.Debug {
		a.command("debug", nil, fmt.Sprintf(format, args...))
	}
}

func (a *Actions) Infof(format string, args ...any) {
	fmt.Fprintf(a.Out, format+"\n", args...)
}

func (a *Actions) Noticef(format string, args ...any) {
	a.command("notice", nil, fmt.Sprintf(format, args...))
}

func (a *Actions) Warningf(format string, args ...any) {
	a.command("warning", nil, fmt.Sprintf(format, args...))
}

func (a *Actions) Errorf(format string, args ...any) {
	a.command("error", nil, fmt.Sprintf(format, args...))
}

// Group starts a collapsible log section; close it with EndGroup.
func (a *Actions) Group(title string) {
	a.command("group", nil, title)
}

func (a *Actions) EndGroup() {
	a.command("endgroup", nil, "")
}

// Fail reports err as an error annotation and returns the process exit code.
func (a *Actions) Fail(err error) int {
	if err == nil {
		return 0
	}
	a.Errorf("%s", err)
	return 1
}

// command prints ::name key=value,...::message.
func (a *Actions) command(name string, props map[string]string, message string) {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(name)
	if len(props) > 0 {
		b.WriteByte(' ')
		first := true
		for _, k := range slices.Sorted(maps.Keys(props)) {
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(escapeProperty(props[k]))
		}
	}
	b.WriteString("::")
	b.WriteString(escapeData(message))
	fmt.Fprintln(a.Out, b.String())
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}

func appendFile(path, content string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G302 G304 - runner-provided file
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
