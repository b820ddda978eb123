// Package action runs a Device Cloud test upload end to end: read inputs,
// run `dcd cloud`, find the upload, wait for its status and publish outputs.
package action

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/command"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/config"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/poll"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/runner"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/scrape"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// SuccessMessage is printed when the run finishes without failures.
const SuccessMessage = "Successfully completed test run."

// ErrNoUploadID is returned when the cloud command output has no results URL.
var ErrNoUploadID = errors.New("no upload ID found in dcd output")

// RunFailedError reports an upload that finished FAILED or CANCELLED.
type RunFailedError struct {
	Report *status.Report
}

func (e *RunFailedError) Error() string {
	return "test run " + e.Report.Summary()
}

// Deps are the collaborators of Run.
type Deps struct {
	Inputs  inputs.Source
	Config  *config.ResolvedConfig
	Actions *actions.Actions

	// Runner runs `dcd cloud`, normally streaming its output to the log.
	Runner poll.Runner

	// StatusRunner runs `dcd status`. Defaults to Runner.
	StatusRunner poll.Runner

	// Log renders the final report into the job log. Nil skips it.
	Log render.Renderer
}

// Outcome is what a run produced, also on failure when far enough along.
type Outcome struct {
	Params   *inputs.Params
	UploadID string
	Report   *status.Report
}

// Run executes the action. The returned error is the reason the step fails.
func Run(ctx context.Context, d Deps) (*Outcome, error) {
	a := d.Actions
	out := &Outcome{}

	p, err := inputs.Load(d.Inputs, d.Config)
	if err != nil {
		return out, err
	}
	out.Params = p
	a.AddMask(p.APIKey)

	cloud := command.Cloud(p)
	a.Group("Running dcd cloud")
	a.Infof("%s", cloud)
	result, runErr := d.Runner.Run(ctx, cloud.Name, cloud.Args()...)
	a.EndGroup()
	if runErr != nil && !errors.Is(runErr, runner.ErrNonZeroExit) {
		return out, fmt.Errorf("dcd cloud: %w", runErr)
	}
	if result.Truncated > 0 {
		a.Debugf("dcd output truncated by %d bytes", result.Truncated)
	}

	id, ok := scrape.UploadID(result.Output)
	if !ok {
		if runErr != nil {
			return out, fmt.Errorf("%w: dcd cloud: %w", ErrNoUploadID, runErr)
		}
		return out, ErrNoUploadID
	}
	out.UploadID = id
	a.Debugf("upload id %s", id)

	statusRunner := d.StatusRunner
	if statusRunner == nil {
		statusRunner = d.Runner
	}
	poller := &poll.Poller{
		Runner:   statusRunner,
		Interval: p.StatusInterval,
		Timeout:  p.StatusTimeout,
		OnUpdate: func(r *status.Report) {
			a.Debugf("upload %s: %s", id, r.Summary())
		},
	}
	report, pollErr := poller.Poll(ctx, command.Status(p, id), !p.Async)
	if report == nil {
		return out, pollErr
	}
	out.Report = report

	if err := publish(d, p, result, report); err != nil {
		return out, err
	}

	switch {
	case pollErr != nil:
		return out, pollErr
	case report.Status.IsFailure():
		return out, &RunFailedError{Report: report}
	case runErr != nil:
		return out, fmt.Errorf("dcd cloud: %w", runErr)
	}

	if report.Status.IsTerminal() {
		a.Infof("%s", SuccessMessage)
	} else {
		a.Noticef("Upload %s is %s; not waiting for results", id, report.Status)
	}
	return out, nil
}

// publish writes the step outputs, the job summary and the log rendering.
func publish(d Deps, p *inputs.Params, result *runner.Result, report *status.Report) error {
	a := d.Actions

	consoleURL := report.ConsoleURL
	if consoleURL == "" {
		consoleURL, _ = scrape.ConsoleURL(result.Output)
	}
	appBinaryID := report.AppBinaryID
	if appBinaryID == "" {
		appBinaryID = p.AppBinaryID
	}
	flows, err := report.FlowResultsJSON()
	if err != nil {
		return err
	}

	outputs := []struct{ name, value string }{
		{actions.OutputConsoleURL, consoleURL},
		{actions.OutputAppBinaryID, appBinaryID},
		{actions.OutputUploadStatus, string(report.Status)},
		{actions.OutputFlowResults, flows},
	}
	for _, o := range outputs {
		if err := a.SetOutput(o.name, o.value); err != nil {
			return fmt.Errorf("publishing outputs: %w", err)
		}
	}

	if err := a.AppendSummary(render.NewMarkdown().Render(report)); err != nil {
		return fmt.Errorf("writing job summary: %w", err)
	}
	if d.Log != nil {
		a.Infof("%s", strings.TrimRight(d.Log.Render(report), "\n"))
	}
	return nil
}
