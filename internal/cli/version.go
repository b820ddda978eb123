package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/version"
)

func newVersionCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version needs no project config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			info := version.Get()
			switch format {
			case "json":
				enc := json.NewEncoder(app.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(info); err != nil {
					return fmt.Errorf("encoding version info: %w", err)
				}
			case "text":
				fmt.Fprintf(app.Stdout, "dcd-action %s\n", info.Version)
				fmt.Fprintf(app.Stdout, "Commit: %s\n", info.Commit)
				fmt.Fprintf(app.Stdout, "Build Date: %s\n", info.BuildDate)
				fmt.Fprintf(app.Stdout, "Go Version: %s\n", info.GoVersion)
				fmt.Fprintf(app.Stdout, "OS/Arch: %s/%s\n", info.GOOS, info.GOARCH)
			default:
				return usageErrorf("unsupported format %q, use 'text' or 'json'", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
