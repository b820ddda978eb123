package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// Markdown renders a report as a GitHub-flavored job summary.
// No ANSI codes; flows keep the order dcd reported them in.
type Markdown struct{}

// NewMarkdown creates a markdown renderer.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Render formats a heading, a counts line, the flow table and a console link.
func (m *Markdown) Render(r *status.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s Device Cloud: %s\n\n", markdownIcon(r.Status), r.Summary())

	if counts := countsLine(r); counts != "" {
		sb.WriteString(counts)
		sb.WriteString("\n\n")
	}

	if len(r.Tests) > 0 {
		rows := [][]string{{"Flow", "Status", "Duration"}}
		for _, t := range r.Tests {
			rows = append(rows, []string{
				escapeCell(t.Name),
				markdownIcon(t.Status) + " " + Label(t.Status),
				formatDuration(t.Duration),
			})
		}
		sb.WriteString(table(rows))
		sb.WriteString("\n")
	}

	if failures := r.Failures(); len(failures) > 0 {
		for _, f := range failures {
			if f.FailReason == "" {
				continue
			}
			reason := strings.TrimRight(f.FailReason, "\n")
			fence := codeFence(reason)
			fmt.Fprintf(&sb, "<details><summary>%s</summary>\n\n%s\n%s\n%s\n</details>\n\n",
				escapeCell(f.Name), fence, reason, fence)
		}
	}

	if r.ConsoleURL != "" {
		fmt.Fprintf(&sb, "[View results in the Device Cloud console](%s)\n", r.ConsoleURL)
	}
	return sb.String()
}

// countsLine lists non-zero flow counts in display order, e.g. "3 passed · 1 failed".
func countsLine(r *status.Report) string {
	counts := r.Counts()
	var parts []string
	for _, s := range status.All {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(s))))
		}
	}
	return strings.Join(parts, " · ")
}

// table lays out rows as a markdown table with columns padded to equal display width.
func table(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell), 3)
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}

func markdownIcon(s status.Status) string {
	switch s {
	case status.Passed:
		return "✅"
	case status.Failed:
		return "❌"
	case status.Cancelled:
		return "⚠️"
	default:
		return "⏳"
	}
}

// codeFence returns a backtick fence longer than any backtick run in s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
