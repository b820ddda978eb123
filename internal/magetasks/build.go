package magetasks

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BuildAll builds the static action binary with version information.
func BuildAll() error {
	PrintH2Header("Build")

	ldflags := fmt.Sprintf("-s -w -X '%s/internal/version.Version=%s' -X '%s/internal/version.CommitHash=%s' -X '%s/internal/version.BuildDate=%s'",
		ModulePath, getGitVersion(), ModulePath, getGitCommit(), ModulePath, time.Now().UTC().Format(time.RFC3339))

	if err := RunEnv("Build dcd-action", []string{"CGO_ENABLED=0"}, "go", "build", "-trimpath", "-ldflags", ldflags, "-o", BinPath, MainPackage); err != nil {
		return err
	}
	PrintInfo(fmt.Sprintf("Built: %s", BinPath))
	return nil
}

// DockerBuild builds the action's container image.
func DockerBuild() error {
	PrintH2Header("Docker")
	if err := Run("Docker build", "docker", "build", "-t", DockerImage, "."); err != nil {
		if IsCommandNotFound(err) {
			PrintWarning("docker not found")
		}
		return err
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	PrintH2Header("Clean")

	if err := os.RemoveAll("./bin"); err != nil {
		return fmt.Errorf("removing bin: %w", err)
	}
	_ = os.Remove("coverage.out")

	PrintSuccess("Cleaned build artifacts")
	return nil
}

func getGitVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty", "--match=v*").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

func getGitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
