package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DCD_API_URL", "DCD_VERSION", "DCD_THEME", "DCD_DEBUG", "RUNNER_DEBUG", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProjectConfig_ReturnsDefaults_When_NoFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadProjectConfig(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultProjectConfig(), cfg)
}

func TestLoadProjectConfig_MergesYAMLOverrides_When_FilePresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, ""+
		"api_url: https://staging.devicecloud.dev\n"+
		"dcd_version: 3.4.1\n"+
		"theme: orca\n"+
		"debug: true\n"+
		"status:\n"+
		"  interval: 15s\n"+
		"  timeout: 45m\n")

	cfg, path, err := LoadProjectConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "https://staging.devicecloud.dev", cfg.APIURL)
	assert.Equal(t, "3.4.1", cfg.DCDVersion)
	assert.Equal(t, "orca", cfg.Theme)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 15*time.Second, cfg.Status.Interval)
	assert.Equal(t, 45*time.Minute, cfg.Status.Timeout)
	assert.Equal(t, int64(DefaultMaxBufferSize), cfg.MaxBufferSize, "unset fields keep defaults")
}

func TestLoadProjectConfig_FindsFileInParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	want := writeConfig(t, root, "theme: mono\n")
	nested := filepath.Join(root, "apps", "mobile")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, path, err := LoadProjectConfig(nested)

	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "mono", cfg.Theme)
}

func TestLoadProjectConfig_ReturnsError_When_YAMLMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "status: [not, a, map\n")

	_, _, err := LoadProjectConfig(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "api_url: https://file.devicecloud.dev\ndcd_version: 3.0.0\n")
	t.Setenv("DCD_API_URL", "https://env.devicecloud.dev")

	resolved, err := Resolve(dir)

	require.NoError(t, err)
	assert.Equal(t, "https://env.devicecloud.dev", resolved.APIURL)
	assert.Equal(t, "env", resolved.APIURLSource)
	assert.Equal(t, "3.0.0", resolved.DCDVersion)
	assert.Equal(t, "file", resolved.VersionSource)
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)

	resolved, err := Resolve(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, resolved.APIURL)
	assert.Equal(t, "default", resolved.APIURLSource)
	assert.Equal(t, DefaultDCDVersion, resolved.DCDVersion)
	assert.Equal(t, DefaultStatusInterval, resolved.StatusInterval)
	assert.Equal(t, DefaultStatusTimeout, resolved.StatusTimeout)
	assert.False(t, resolved.Debug)
}

func TestResolve_NoColorForcesMonoTheme(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("DCD_THEME", "orca")

	resolved, err := Resolve(t.TempDir())

	require.NoError(t, err)
	assert.True(t, resolved.NoColor)
	assert.Equal(t, "mono", resolved.Theme)
}

func TestResolve_RunnerDebugEnablesDebug(t *testing.T) {
	clearEnv(t)
	t.Setenv("RUNNER_DEBUG", "1")

	resolved, err := Resolve(t.TempDir())

	require.NoError(t, err)
	assert.True(t, resolved.Debug)
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown theme from env", env: map[string]string{"DCD_THEME": "neon"}, wantErr: "invalid theme"},
		{name: "timeout shorter than interval", yaml: "status:\n  interval: 1m\n  timeout: 30s\n", wantErr: "shorter than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := t.TempDir()
			if tt.yaml != "" {
				writeConfig(t, dir, tt.yaml)
			}

			_, err := Resolve(dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
