package magetasks

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
)

const sampleAction = `
name: Sample
inputs:
  api-key:
    required: true
  app-file:
    required: false
  legacy-flag:
    required: false
outputs:
  DEVICE_CLOUD_UPLOAD_STATUS:
    description: status
runs:
  using: node20
  image: Dockerfile
  args:
    - status
`

func TestCheckActionMetadata_ReportsDrift(t *testing.T) {
	problems, err := checkActionMetadata([]byte(sampleAction),
		[]string{"api-key", "app-file", "app-binary-id"},
		[]string{actions.OutputUploadStatus, actions.OutputConsoleURL})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		`input "legacy-flag" is declared but not handled`,
		`input "app-binary-id" is missing from action.yml`,
		`output "DEVICE_CLOUD_CONSOLE_URL" is missing from action.yml`,
		"runs: want docker image Dockerfile, got node20 Dockerfile",
		"runs.args: want run subcommand, got status",
	}, problems)
}

func TestCheckActionMetadata_RejectsInvalidYAML(t *testing.T) {
	_, err := checkActionMetadata([]byte("inputs: [unterminated"), nil, nil)

	assert.ErrorContains(t, err, "parsing action.yml")
}

func TestLintAction_AcceptsRepositoryMetadata(t *testing.T) {
	prev := ProjectRoot
	t.Cleanup(func() { ProjectRoot = prev })
	ProjectRoot = filepath.Join("..", "..")
	out := captureOut(t)

	require.NoError(t, LintAction())
	assert.Contains(t, out.String(), "Action metadata")
}

func TestGolangci_FixAddsFlag(t *testing.T) {
	assert.Equal(t, []string{"run", "--timeout=5m", "./..."}, golangci(false).args)

	fix := golangci(true)
	assert.Equal(t, "Golangci-lint Fix", fix.label)
	assert.Equal(t, []string{"run", "--fix", "--timeout=5m", "./..."}, fix.args)
	assert.True(t, fix.optional)
}

func TestLinters_OnlyExternalToolsAreOptional(t *testing.T) {
	for _, l := range linters() {
		switch l.name {
		case "sh", "go":
			assert.False(t, l.optional, l.label)
		default:
			assert.True(t, l.optional, l.label)
			assert.NotEmpty(t, l.install, l.label)
		}
	}
}

func TestLinterRun_WarnsWithInstallHint_When_Missing(t *testing.T) {
	out := captureOut(t)
	l := linter{label: "Nolint", name: "definitely-not-a-real-linter-dcd", optional: true, install: "go install example.com/nolint@latest"}

	err := l.run()

	require.Error(t, err)
	assert.True(t, IsCommandNotFound(err))
	assert.Contains(t, out.String(), "Nolint not found (install: go install example.com/nolint@latest)")
}
