package magetasks

// TestAll runs all tests.
func TestAll() error {
	PrintH2Header("Tests")
	return Run("Tests", "go", "test", "./...")
}

// TestCoverage runs tests with coverage and prints the per-function report.
func TestCoverage() error {
	PrintH2Header("Test Coverage")
	if err := Run("Tests with coverage", "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return Run("Coverage report", "go", "tool", "cover", "-func=coverage.out")
}

// TestRace runs tests with the race detector.
func TestRace() error {
	PrintH2Header("Race Detector")
	return RunEnv("Race detector", []string{"CGO_ENABLED=1"}, "go", "test", "-race", "./...")
}
