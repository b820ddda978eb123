package magetasks

import (
	"os"
	"path/filepath"
)

var (
	// ModulePath is the Go module path.
	ModulePath = "github.com/devicecloud-dev/device-cloud-for-maestro"

	// BinPath is the output path for the action binary.
	BinPath = "./bin/dcd-action"

	// MainPackage is the package built into BinPath.
	MainPackage = "./cmd/dcd-action"

	// DockerImage is the tag used by DockerBuild.
	DockerImage = "device-cloud-for-maestro:dev"

	// ActionFile is the action metadata checked by LintAction.
	ActionFile = "action.yml"

	// LintTimeout bounds a golangci-lint run.
	LintTimeout = "5m"

	// ProjectRoot is the root directory of the project.
	ProjectRoot string
)

// Initialize sets up the magetasks package.
// Call this from the Magefile init() function.
func Initialize() error {
	var err error
	ProjectRoot, err = os.Getwd()
	if err != nil {
		return err
	}

	binDir := filepath.Join(ProjectRoot, "bin")
	return os.MkdirAll(binDir, 0o750)
}
