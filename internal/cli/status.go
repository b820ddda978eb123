package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/action"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/command"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/poll"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/watch"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

type statusOptions struct {
	uploadID string
	apiKey   string
	apiURL   string
	wait     bool
	watch    bool
	format   string
}

func newStatusCommand(app *App) *cobra.Command {
	opts := &statusOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of an existing upload",
		Long: `Show the status of an existing upload.

The api key and url are read from --api-key/--api-url or the same INPUT_*
variables the action uses. --watch shows a live view on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runStatus(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.uploadID, "upload-id", "", "upload to query (required)")
	f.StringVar(&opts.apiKey, "api-key", "", "Device Cloud api key")
	f.StringVar(&opts.apiURL, "api-url", "", "Device Cloud api url")
	f.BoolVar(&opts.wait, "wait", false, "poll until the upload finishes")
	f.BoolVar(&opts.watch, "watch", false, "show a live view until the upload finishes")
	f.StringVar(&opts.format, "format", render.FormatTerminal, "output format: "+strings.Join(render.Formats, ", "))
	_ = cmd.MarkFlagRequired("upload-id")
	return cmd
}

func (app *App) runStatus(ctx context.Context, opts *statusOptions) error {
	if !slices.Contains(render.Formats, opts.format) {
		return usageErrorf("unknown format %q (expected one of %s)", opts.format, strings.Join(render.Formats, ", "))
	}
	cfg := app.config
	theme := render.ThemeByName(cfg.Theme)
	width := terminalWidth(app.Stdout)
	renderer, err := render.ForFormat(opts.format, theme, width)
	if err != nil {
		return usageErrorf("%v", err)
	}

	src := inputs.Layered(
		inputs.MapSource{"api-key": opts.apiKey, "api-url": opts.apiURL},
		inputs.NewEnvSource(),
	)
	p, err := inputs.LoadStatus(src, cfg)
	if err != nil {
		return err
	}

	statusCmd := command.Status(p, opts.uploadID)
	poller := &poll.Poller{
		Runner:   app.runner(false),
		Interval: p.StatusInterval,
		Timeout:  p.StatusTimeout,
	}

	var report *status.Report
	if opts.watch && isTerminal(app.Stdout) {
		wctx, cancel := context.WithTimeout(ctx, p.StatusTimeout)
		defer cancel()
		report, err = watch.Run(wctx, func(ctx context.Context) (*status.Report, error) {
			return poller.Poll(ctx, statusCmd, false)
		}, watch.Options{
			UploadID: opts.uploadID,
			Interval: p.StatusInterval,
			Theme:    theme,
			Width:    width,
			Input:    app.Stdin,
			Output:   app.Stdout,
		})
		err = watchError(ctx, poller, report, err)
	} else {
		report, err = poller.Poll(ctx, statusCmd, opts.wait || opts.watch)
	}
	if report != nil {
		fmt.Fprint(app.Stdout, renderer.Render(report))
	}
	if err != nil {
		return err
	}
	if report.Status.IsFailure() {
		return &action.RunFailedError{Report: report}
	}
	return nil
}

// watchError maps the watch deadline onto poll.ErrTimeout so both paths
// fail the same way. A cancelled parent context is returned as is.
func watchError(parent context.Context, poller *poll.Poller, report *status.Report, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return poller.TimeoutError(report)
	}
	return err
}
