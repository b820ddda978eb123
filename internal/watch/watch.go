// Package watch shows a live view of an upload while it runs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// ErrAborted is returned when the user quits before the upload settles.
var ErrAborted = errors.New("watch aborted")

// FetchFunc fetches the current report once.
type FetchFunc func(ctx context.Context) (*status.Report, error)

// Options configure a watch.
type Options struct {
	UploadID string
	Interval time.Duration
	Theme    render.Theme
	Width    int
	Input    io.Reader
	Output   io.Writer
}

// Run re-fetches the report every interval until it is terminal, the user
// quits or ctx is done. It returns the last report seen.
func Run(ctx context.Context, fetch FetchFunc, opts Options) (*status.Report, error) {
	teaOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		teaOpts = append(teaOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		teaOpts = append(teaOpts, tea.WithOutput(opts.Output))
	}

	program := tea.NewProgram(newModel(ctx, fetch, opts), teaOpts...)
	final, err := program.Run()
	m, _ := final.(model)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return m.report, ctxErr
		}
		return m.report, err
	}
	return m.report, m.err
}

type model struct {
	ctx     context.Context
	fetch   FetchFunc
	opts    Options
	spinner spinner.Model
	started time.Time

	report *status.Report
	err    error
	done   bool
}

func newModel(ctx context.Context, fetch FetchFunc, opts Options) model {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = opts.Theme.Primary
	return model{ctx: ctx, fetch: fetch, opts: opts, spinner: s, started: time.Now()}
}

type reportMsg struct{ report *status.Report }
type errMsg struct{ err error }
type fetchMsg struct{}

func (m model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		r, err := m.fetch(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{r}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.err = ErrAborted
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.opts.Width = msg.Width
	case reportMsg:
		m.report = msg.report
		if m.report.Status.IsTerminal() {
			m.done = true
			return m, tea.Quit
		}
		return m, tea.Tick(m.opts.Interval, func(time.Time) tea.Msg { return fetchMsg{} })
	case fetchMsg:
		return m, m.fetchCmd()
	case errMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	summary := "waiting for status"
	if m.report != nil {
		summary = m.report.Summary()
	}
	sb.WriteString(m.opts.Theme.Bold.Render(fmt.Sprintf("Upload %s: %s", m.opts.UploadID, summary)))
	sb.WriteString(m.opts.Theme.Muted.Render(fmt.Sprintf("  %s", time.Since(m.started).Round(time.Second))))
	sb.WriteString("\n")

	if m.report != nil && len(m.report.Tests) > 0 {
		for _, t := range m.report.Tests {
			icon, style := m.opts.Theme.StatusStyle(t.Status)
			sb.WriteString("  ")
			sb.WriteString(style.Render(icon + " " + t.Name))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(m.opts.Theme.Muted.Render("q to stop watching"))
	sb.WriteString("\n")
	return sb.String()
}
