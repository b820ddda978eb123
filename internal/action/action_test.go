package action

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/config"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/runner"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/status"
)

const cloudOutput = `Uploading app... done
Submitted 3 flows.
View results: https://console.devicecloud.dev/results?upload=4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a&result=x
`

type reply struct {
	output string
	err    error
}

// fakeDCD answers `dcd cloud` and `dcd status` from canned replies.
type fakeDCD struct {
	cloud    reply
	statuses []reply
	calls    [][]string
}

func (f *fakeDCD) Run(_ context.Context, name string, args ...string) (*runner.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	r := f.cloud
	if len(args) > 2 && args[2] == "status" {
		n := 0
		for _, c := range f.calls {
			if len(c) > 3 && c[3] == "status" {
				n++
			}
		}
		r = f.statuses[min(n, len(f.statuses))-1]
	}
	return &runner.Result{Output: []byte(r.output)}, r.err
}

func statusReply(st status.Status, flows ...status.Status) reply {
	var tests []string
	for i, f := range flows {
		tests = append(tests, fmt.Sprintf(`{"name":"flow-%d.yaml","status":%q}`, i+1, f))
	}
	return reply{output: fmt.Sprintf(`{"status":%q,"tests":[%s],"consoleUrl":"https://console.devicecloud.dev/results?upload=4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a","appBinaryId":"bin-1"}`,
		st, strings.Join(tests, ","))}
}

type harness struct {
	deps       Deps
	dcd        *fakeDCD
	log        *bytes.Buffer
	outputFile string
	summary    string
}

func newHarness(t *testing.T, in inputs.MapSource, dcd *fakeDCD) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dcd:        dcd,
		log:        &bytes.Buffer{},
		outputFile: filepath.Join(dir, "output"),
		summary:    filepath.Join(dir, "summary"),
	}
	env := map[string]string{actions.EnvOutput: h.outputFile, actions.EnvStepSummary: h.summary}
	a := actions.New(h.log, false)
	a.Getenv = func(k string) string { return env[k] }

	h.deps = Deps{
		Inputs: in,
		Config: &config.ResolvedConfig{
			APIURL:         config.DefaultAPIURL,
			DCDVersion:     "3.1.0",
			StatusInterval: time.Millisecond,
			StatusTimeout:  time.Second,
		},
		Actions: a,
		Runner:  dcd,
		Log:     render.NewTerminal(render.MonoTheme(), 80),
	}
	return h
}

func (h *harness) outputs(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.outputFile)
	require.NoError(t, err)
	return string(data)
}

func baseInputs() inputs.MapSource {
	return inputs.MapSource{
		"api-key":   "secret-key",
		"app-file":  "app.apk",
		"workspace": "flows",
	}
}

func TestRun_PublishesOutputs_When_RunPasses(t *testing.T) {
	dcd := &fakeDCD{
		cloud: reply{output: cloudOutput},
		statuses: []reply{
			statusReply(status.Running, status.Passed, status.Running),
			statusReply(status.Passed, status.Passed, status.Passed),
		},
	}
	h := newHarness(t, baseInputs(), dcd)

	out, err := Run(context.Background(), h.deps)

	require.NoError(t, err)
	assert.Equal(t, "4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a", out.UploadID)
	assert.Equal(t, status.Passed, out.Report.Status)
	require.Len(t, dcd.calls, 3)
	assert.Equal(t, []string{"npx", "--yes", "@devicecloud.dev/dcd@3.1.0", "cloud"}, dcd.calls[0][:4])
	assert.Contains(t, dcd.calls[1], "--upload-id")
	assert.Contains(t, dcd.calls[1], "4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a")

	outputs := h.outputs(t)
	assert.Contains(t, outputs, "DEVICE_CLOUD_UPLOAD_STATUS<<")
	assert.Contains(t, outputs, "\nPASSED\n")
	assert.Contains(t, outputs, "\nbin-1\n")
	assert.Contains(t, outputs, "\nhttps://console.devicecloud.dev/results?upload=4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a\n")
	assert.Contains(t, outputs, `[{"name":"flow-1.yaml","status":"PASSED"},{"name":"flow-2.yaml","status":"PASSED"}]`)

	log := h.log.String()
	assert.Contains(t, log, "::add-mask::secret-key\n")
	assert.Contains(t, log, "::group::Running dcd cloud\n")
	assert.Contains(t, log, "--api-key ***", "api key is redacted in the logged command")
	assert.NotContains(t, log, "--api-key secret-key")
	assert.Contains(t, log, "PASSED: 2 of 2 flows passed")
	assert.True(t, strings.HasSuffix(log, SuccessMessage+"\n"))

	summary, err := os.ReadFile(h.summary)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "## ✅ Device Cloud: PASSED: 2 of 2 flows passed")
}

func TestRun_Fails_When_FlowsFail(t *testing.T) {
	dcd := &fakeDCD{
		cloud:    reply{output: cloudOutput},
		statuses: []reply{statusReply(status.Failed, status.Passed, status.Failed)},
	}
	h := newHarness(t, baseInputs(), dcd)

	out, err := Run(context.Background(), h.deps)

	var failed *RunFailedError
	require.ErrorAs(t, err, &failed)
	assert.EqualError(t, err, "test run FAILED: 1 of 2 flows failed")
	assert.Equal(t, status.Failed, out.Report.Status)
	assert.Contains(t, h.outputs(t), "\nFAILED\n", "outputs are published before failing")
	assert.NotContains(t, h.log.String(), SuccessMessage)
}

func TestRun_AcceptsRunningStatus_When_Async(t *testing.T) {
	in := baseInputs()
	in["async"] = "true"
	dcd := &fakeDCD{
		cloud:    reply{output: cloudOutput},
		statuses: []reply{statusReply(status.Pending)},
	}
	h := newHarness(t, in, dcd)

	out, err := Run(context.Background(), h.deps)

	require.NoError(t, err)
	assert.Equal(t, status.Pending, out.Report.Status)
	assert.Len(t, dcd.calls, 2, "async makes a single status call")
	assert.Contains(t, dcd.calls[0], "--async")
	assert.Contains(t, h.outputs(t), "\nPENDING\n")
	assert.Contains(t, h.outputs(t), "DEVICE_CLOUD_FLOW_RESULTS<<")
	assert.Contains(t, h.log.String(), "::notice::Upload 4f2c9a1e-77b0-4a1d-9c3e-1f2e3d4c5b6a is PENDING")
}

func TestRun_Fails_When_NoUploadIDInOutput(t *testing.T) {
	tests := []struct {
		name    string
		cloud   reply
		wantErr string
	}{
		{
			name:    "clean exit",
			cloud:   reply{output: "nothing to see"},
			wantErr: "no upload ID found in dcd output",
		},
		{
			name:    "non-zero exit",
			cloud:   reply{output: "Error: bad api key", err: fmt.Errorf("%w: %w", runner.ErrNonZeroExit, runner.ExitCodeError{Code: 2})},
			wantErr: "no upload ID found in dcd output: dcd cloud: command exited with non-zero code: exit code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dcd := &fakeDCD{cloud: tt.cloud}
			h := newHarness(t, baseInputs(), dcd)

			_, err := Run(context.Background(), h.deps)

			require.ErrorIs(t, err, ErrNoUploadID)
			assert.EqualError(t, err, tt.wantErr)
			assert.Len(t, dcd.calls, 1, "status is not queried")
		})
	}
}

func TestRun_FetchesStatusThenFails_When_CloudExitsNonZero(t *testing.T) {
	dcd := &fakeDCD{
		cloud:    reply{output: cloudOutput, err: fmt.Errorf("%w: %w", runner.ErrNonZeroExit, runner.ExitCodeError{Code: 1})},
		statuses: []reply{statusReply(status.Passed, status.Passed)},
	}
	h := newHarness(t, baseInputs(), dcd)

	_, err := Run(context.Background(), h.deps)

	require.ErrorIs(t, err, runner.ErrNonZeroExit)
	assert.Contains(t, h.outputs(t), "\nPASSED\n")
}

func TestRun_ReportsFlowFailures_When_CloudExitsNonZeroOnFailedRun(t *testing.T) {
	dcd := &fakeDCD{
		cloud:    reply{output: cloudOutput, err: fmt.Errorf("%w: %w", runner.ErrNonZeroExit, runner.ExitCodeError{Code: 1})},
		statuses: []reply{statusReply(status.Failed, status.Passed, status.Failed)},
	}
	h := newHarness(t, baseInputs(), dcd)

	_, err := Run(context.Background(), h.deps)

	var failed *RunFailedError
	require.ErrorAs(t, err, &failed)
	assert.EqualError(t, err, "test run FAILED: 1 of 2 flows failed")
	assert.Contains(t, h.outputs(t), "\nFAILED\n")
}

func TestRun_ReturnsError_When_CloudCannotStart(t *testing.T) {
	dcd := &fakeDCD{cloud: reply{err: errors.New("starting npx: executable file not found in $PATH")}}
	h := newHarness(t, baseInputs(), dcd)

	_, err := Run(context.Background(), h.deps)

	assert.EqualError(t, err, "dcd cloud: starting npx: executable file not found in $PATH")
}

func TestRun_ReturnsError_When_InputsInvalid(t *testing.T) {
	in := baseInputs()
	in["app-binary-id"] = "bin-1"
	dcd := &fakeDCD{}
	h := newHarness(t, in, dcd)

	_, err := Run(context.Background(), h.deps)

	require.ErrorIs(t, err, inputs.ErrMissingAppSource)
	assert.Empty(t, dcd.calls)
}

func TestRun_UsesStatusRunner_When_Set(t *testing.T) {
	cloud := &fakeDCD{cloud: reply{output: cloudOutput}}
	statusDCD := &fakeDCD{statuses: []reply{statusReply(status.Passed)}}
	h := newHarness(t, baseInputs(), cloud)
	h.deps.StatusRunner = statusDCD

	_, err := Run(context.Background(), h.deps)

	require.NoError(t, err)
	assert.Len(t, cloud.calls, 1)
	assert.Len(t, statusDCD.calls, 1)
}
