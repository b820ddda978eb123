package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass    string
	Fail    string
	Cancel  string
	Info    string
	Pending string
	Running string
	Bullet  string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:    "✓",
			Fail:    "✗",
			Cancel:  "⊘",
			Info:    "●",
			Pending: "○",
			Running: "◐",
			Bullet:  "·",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // pale blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:    "✓",
			Fail:    "✗",
			Cancel:  "!",
			Info:    "·",
			Pending: "○",
			Running: "~",
			Bullet:  "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:    "+",
			Fail:    "x",
			Cancel:  "!",
			Info:    "*",
			Pending: "-",
			Running: "~",
			Bullet:  "-",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
// The names match the theme values accepted by the project config.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// StatusStyle returns the icon and style used for a flow or upload status.
func (t Theme) StatusStyle(s status.Status) (string, lipgloss.Style) {
	switch s {
	case status.Passed:
		return t.Icons.Pass, t.Success
	case status.Failed:
		return t.Icons.Fail, t.Error
	case status.Cancelled:
		return t.Icons.Cancel, t.Warning
	case status.Pending:
		return t.Icons.Pending, t.Muted
	case status.Running:
		return t.Icons.Running, t.Primary
	default:
		return t.Icons.Info, t.Muted
	}
}
