// Package command assembles dcd command lines from action inputs.
package command

import (
	"strconv"
	"strings"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/shell"
)

// Package is the npm package providing the dcd CLI.
const Package = "@devicecloud.dev/dcd"

// Redacted replaces secret values in rendered command lines.
const Redacted = "***"

// Command is an argv for the dcd CLI plus the values to redact when it is logged.
type Command struct {
	Name    string
	Argv    []string
	secrets []string
}

// Args returns the argument vector without the program name.
func (c *Command) Args() []string {
	return c.Argv
}

// String renders the command as a shell-escaped line with secrets redacted.
func (c *Command) String() string {
	argv := make([]string, 0, len(c.Argv)+1)
	argv = append(argv, c.Name)
	for _, a := range c.Argv {
		for _, s := range c.secrets {
			if s != "" && a == s {
				a = Redacted
			}
		}
		argv = append(argv, a)
	}
	return shell.Join(argv)
}

// flag is one --name value pair. A bool flag with a true value renders as a bare switch.
type flag struct {
	name  string
	value any
}

// Cloud builds `npx --yes @devicecloud.dev/dcd@<version> cloud ... --quiet`.
// Zero values are omitted.
func Cloud(p *inputs.Params) *Command {
	flags := []flag{
		{"additional-app-binary-ids", p.AdditionalAppBinaryIDs},
		{"additional-app-files", p.AdditionalAppFiles},
		{"android-api-level", p.AndroidAPILevel},
		{"android-device", p.AndroidDevice},
		{"api-key", p.APIKey},
		{"api-url", p.APIURL},
		{"app-binary-id", p.AppBinaryID},
		{"app-file", p.AppFile},
		{"async", p.Async},
		{"device-locale", p.DeviceLocale},
		{"download-artifacts", p.DownloadArtifacts},
		{"exclude-flows", p.ExcludeFlows},
		{"exclude-tags", p.ExcludeTags},
		{"flows", p.Workspace},
		{"google-play", p.GooglePlay},
		{"ignore-sha-check", p.IgnoreSHACheck},
		{"include-tags", p.IncludeTags},
		{"ios-device", p.IOSDevice},
		{"ios-version", p.IOSVersion},
		{"maestro-version", p.MaestroVersion},
		{"name", p.Name},
		{"orientation", p.Orientation},
		{"report", p.Report},
		{"retry", p.Retry},
		{"x86-arch", p.X86Arch},
	}

	argv := npx(p.DCDVersion, "cloud")
	argv = appendFlags(argv, flags)
	for _, e := range p.Env {
		argv = append(argv, "--env", e.Key+"="+unquote(e.Value))
	}
	argv = append(argv, "--quiet")

	return &Command{Name: "npx", Argv: argv, secrets: []string{p.APIKey}}
}

// Status builds `npx --yes @devicecloud.dev/dcd@<version> status --upload-id <id> --json ...`.
func Status(p *inputs.Params, uploadID string) *Command {
	argv := npx(p.DCDVersion, "status")
	argv = appendFlags(argv, []flag{
		{"upload-id", uploadID},
		{"json", true},
		{"api-key", p.APIKey},
		{"api-url", p.APIURL},
	})
	return &Command{Name: "npx", Argv: argv, secrets: []string{p.APIKey}}
}

func npx(version, subcommand string) []string {
	pkg := Package
	if version != "" {
		pkg += "@" + version
	}
	return []string{"--yes", pkg, subcommand}
}

func appendFlags(argv []string, flags []flag) []string {
	for _, f := range flags {
		switch v := f.value.(type) {
		case string:
			if v != "" {
				argv = append(argv, "--"+f.name, v)
			}
		case int:
			if v != 0 {
				argv = append(argv, "--"+f.name, strconv.Itoa(v))
			}
		case bool:
			if v {
				argv = append(argv, "--"+f.name)
			}
		case []string:
			if len(v) > 0 {
				argv = append(argv, "--"+f.name, strings.Join(v, ","))
			}
		}
	}
	return argv
}

// unquote strips one pair of surrounding double quotes.
func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}
