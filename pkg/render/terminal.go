package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// Terminal renders reports as styled terminal output via lipgloss.
type Terminal struct {
	theme Theme
	width int
}

// NewTerminal creates a terminal renderer with the given theme.
func NewTerminal(theme Theme, width int) *Terminal {
	if width <= 0 {
		width = 80
	}
	return &Terminal{theme: theme, width: width}
}

// Render formats the report header, one line per flow and the console link.
func (t *Terminal) Render(r *status.Report) string {
	var sb strings.Builder

	icon, style := t.theme.StatusStyle(r.Status)
	sb.WriteString(style.Render(icon + " "))
	sb.WriteString(t.theme.Bold.Render(r.Summary()))
	sb.WriteString("\n")

	if len(r.Tests) > 0 {
		sb.WriteString(t.renderFlows(r.Tests))
	}

	if r.ConsoleURL != "" {
		sb.WriteString(t.theme.Muted.Render("Console: "))
		sb.WriteString(t.theme.Primary.Render(r.ConsoleURL))
		sb.WriteString("\n")
	}
	if r.AppBinaryID != "" {
		sb.WriteString(t.theme.Muted.Render("App binary: " + r.AppBinaryID))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) renderFlows(tests []status.TestResult) string {
	maxName, maxDur := 0, 0
	for _, tr := range tests {
		maxName = max(maxName, runewidth.StringWidth(tr.Name))
		maxDur = max(maxDur, len(formatDuration(tr.Duration)))
	}
	// icon, two gaps and the duration column share the line with the name
	limit := t.width - 4 - maxDur - 2
	if limit < 10 {
		limit = 10
	}
	maxName = min(maxName, limit)

	var sb strings.Builder
	for _, tr := range tests {
		sb.WriteString("  ")
		icon, style := t.theme.StatusStyle(tr.Status)
		sb.WriteString(style.Render(icon + " "))

		name := runewidth.Truncate(tr.Name, maxName, "...")
		sb.WriteString(runewidth.FillRight(name, maxName))

		if d := formatDuration(tr.Duration); d != "" {
			sb.WriteString("  ")
			sb.WriteString(t.theme.Muted.Render(padLeft(d, maxDur)))
		}
		if tr.Status != status.Passed && tr.Status != "" {
			sb.WriteString("  ")
			sb.WriteString(style.Render(Label(tr.Status)))
		}

		if tr.FailReason != "" {
			for _, line := range strings.Split(strings.TrimRight(tr.FailReason, "\n"), "\n") {
				sb.WriteString("\n      ")
				sb.WriteString(t.theme.Muted.Render(line))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

