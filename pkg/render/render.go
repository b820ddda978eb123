// Package render formats upload status reports for terminals, job summaries
// and automation.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// Renderer converts a report to formatted output.
type Renderer interface {
	Render(r *status.Report) string
}

// Output formats accepted by ForFormat.
const (
	FormatTerminal = "terminal"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTerminal, FormatMarkdown, FormatJSON}

// ForFormat returns the renderer for format. theme and width only apply to
// terminal output.
func ForFormat(format string, theme Theme, width int) (Renderer, error) {
	switch format {
	case FormatTerminal, "":
		return NewTerminal(theme, width), nil
	case FormatMarkdown:
		return NewMarkdown(), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

var titleCaser = cases.Title(language.English)

// Label returns the display form of a status, e.g. "Passed".
func Label(s status.Status) string {
	if s == "" {
		return "Unknown"
	}
	return titleCaser.String(string(s))
}

// formatDuration renders seconds as "12.3s" or "2m05s". Zero renders empty.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	total := int(seconds + 0.5)
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}
