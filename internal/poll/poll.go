// Package poll queries upload status through the dcd CLI until a run settles.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/command"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/runner"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

// Runner executes one command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*runner.Result, error)
}

// ErrTimeout is returned when the upload is still in progress after Timeout.
var ErrTimeout = errors.New("timed out waiting for upload status")

// Poller runs a status command and parses its report.
type Poller struct {
	Runner   Runner
	Interval time.Duration
	Timeout  time.Duration

	// OnUpdate, if set, is called with every report fetched.
	OnUpdate func(*status.Report)
}

// Poll fetches the status once, or, with wait, until the status is terminal
// or Timeout elapses. Command failures and malformed output are returned
// immediately without retrying.
func (p *Poller) Poll(ctx context.Context, cmd *command.Command, wait bool) (*status.Report, error) {
	if wait && p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var last *status.Report
	for {
		report, err := p.fetch(ctx, cmd)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return last, p.TimeoutError(last)
			}
			return nil, err
		}
		last = report
		if p.OnUpdate != nil {
			p.OnUpdate(report)
		}
		if !wait || report.Status.IsTerminal() {
			return report, nil
		}

		timer := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return last, p.TimeoutError(last)
			}
			return last, ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Poller) fetch(ctx context.Context, cmd *command.Command) (*status.Report, error) {
	result, runErr := p.Runner.Run(ctx, cmd.Name, cmd.Args()...)
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(runErr, runner.ErrNonZeroExit) || result == nil {
			return nil, fmt.Errorf("dcd status failed: %w", runErr)
		}
	}

	// dcd exits non-zero for failed uploads but still prints the report.
	report, err := status.Parse(result.Output)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("dcd status failed: %w", runErr)
		}
		return nil, fmt.Errorf("reading dcd status: %w", err)
	}
	return report, nil
}

// TimeoutError reports that no terminal status arrived within Timeout; last
// may be nil.
func (p *Poller) TimeoutError(last *status.Report) error {
	if last == nil {
		return fmt.Errorf("%w: no status after %s", ErrTimeout, p.Timeout)
	}
	return fmt.Errorf("%w: status still %s after %s", ErrTimeout, last.Status, p.Timeout)
}
