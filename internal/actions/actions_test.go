package actions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActions(env map[string]string) (*Actions, *bytes.Buffer) {
	var out bytes.Buffer
	a := &Actions{
		Out:       &out,
		Getenv:    func(k string) string { return env[k] },
		delimiter: func() string { return "ghadelimiter_test" },
	}
	return a, &out
}

func TestSetOutput_AppendsHeredoc_When_OutputFileSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	a, out := newTestActions(map[string]string{EnvOutput: path})

	require.NoError(t, a.SetOutput(OutputUploadStatus, "PASSED"))
	require.NoError(t, a.SetOutput(OutputFlowResults, "[\n{}\n]"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"DEVICE_CLOUD_UPLOAD_STATUS<<ghadelimiter_test\nPASSED\nghadelimiter_test\n"+
			"DEVICE_CLOUD_FLOW_RESULTS<<ghadelimiter_test\n[\n{}\n]\nghadelimiter_test\n",
		string(data))
	assert.Empty(t, out.String())
}

func TestSetOutput_RejectsValue_When_ItContainsDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	a, _ := newTestActions(map[string]string{EnvOutput: path})

	err := a.SetOutput("x", "a ghadelimiter_test b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains delimiter")
}

func TestSetOutput_PrintsLegacyCommand_When_OutputFileUnset(t *testing.T) {
	a, out := newTestActions(nil)

	require.NoError(t, a.SetOutput(OutputConsoleURL, "https://console.devicecloud.dev/results?upload=1"))

	assert.Equal(t, "::set-output name=DEVICE_CLOUD_CONSOLE_URL::https://console.devicecloud.dev/results?upload=1\n", out.String())
}

func TestSetOutput_ReturnsError_When_OutputFileUnwritable(t *testing.T) {
	a, _ := newTestActions(map[string]string{EnvOutput: filepath.Join(t.TempDir(), "missing", "output")})

	err := a.SetOutput("x", "y")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")
}

func TestNew_UsesRandomDelimiter(t *testing.T) {
	a := New(&bytes.Buffer{}, false)

	d1, d2 := a.newDelimiter(), a.newDelimiter()

	assert.Regexp(t, `^ghadelimiter_[0-9a-f-]{36}$`, d1)
	assert.NotEqual(t, d1, d2)
}

func TestWorkflowCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		emit func(a *Actions)
		want string
	}{
		{"notice", func(a *Actions) { a.Noticef("uploaded %d flows", 3) }, "::notice::uploaded 3 flows\n"},
		{"warning", func(a *Actions) { a.Warningf("slow") }, "::warning::slow\n"},
		{"error escapes newlines and percent", func(a *Actions) { a.Errorf("100%% bad\nline2\r") }, "::error::100%25 bad%0Aline2%0D\n"},
		{"mask", func(a *Actions) { a.AddMask("secret") }, "::add-mask::secret\n"},
		{"empty mask is skipped", func(a *Actions) { a.AddMask("") }, ""},
		{"group", func(a *Actions) { a.Group("dcd cloud"); a.EndGroup() }, "::group::dcd cloud\n::endgroup::\n"},
		{"info is plain", func(a *Actions) { a.Infof("Successfully completed test run.") }, "Successfully completed test run.\n"},
		{"debug hidden by default", func(a *Actions) { a.Debugf("x") }, ""},
		{"debug shown when enabled", func(a *Actions) { a.Debug = true; a.Debugf("upload %s", "u1") }, "::debug::upload u1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, out := newTestActions(nil)
			tt.emit(a)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestCommand_EscapesProperties(t *testing.T) {
	t.Parallel()
	a, out := newTestActions(nil)

	a.command("set-output", map[string]string{"name": "a:b,c"}, "v")

	assert.Equal(t, "::set-output name=a%3Ab%2Cc::v\n", out.String())
}

func TestFail(t *testing.T) {
	t.Parallel()
	a, out := newTestActions(nil)

	assert.Equal(t, 0, a.Fail(nil))
	assert.Empty(t, out.String())

	assert.Equal(t, 1, a.Fail(errors.New("test run FAILED: 1 of 2 flows failed")))
	assert.Equal(t, "::error::test run FAILED: 1 of 2 flows failed\n", out.String())
}

func TestAppendSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary")
	a, _ := newTestActions(map[string]string{EnvStepSummary: path})

	require.NoError(t, a.AppendSummary("## Results"))
	require.NoError(t, a.AppendSummary("| a |\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## Results\n| a |\n", string(data))

	noop, _ := newTestActions(nil)
	assert.NoError(t, noop.AppendSummary("ignored"))
}
