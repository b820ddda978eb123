package magetasks

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
)

// linter is one external lint step.
type linter struct {
	label    string
	name     string
	args     []string
	optional bool   // skipped when not installed
	install  string // hint printed when missing
}

func (l linter) run() error {
	err := Run(l.label, l.name, l.args...)
	if err != nil && IsCommandNotFound(err) && l.install != "" {
		PrintWarning(fmt.Sprintf("%s not found (install: %s)", l.label, l.install))
	}
	return err
}

var (
	gofmtLinter = linter{
		label: "Go Format",
		name:  "sh",
		args:  []string{"-c", `test -z "$(gofmt -l $(git ls-files '*.go' | grep -v '^_examples/'))"`},
	}
	vetLinter = linter{label: "Go Vet", name: "go", args: []string{"vet", "./..."}}
)

// linters returns the external linters run by LintAll, in order.
func linters() []linter {
	return []linter{
		gofmtLinter,
		vetLinter,
		{
			label:    "Staticcheck",
			name:     "staticcheck",
			args:     []string{"./..."},
			optional: true,
			install:  "go install honnef.co/go/tools/cmd/staticcheck@latest",
		},
		golangci(false),
		{
			label:    "Hadolint",
			name:     "hadolint",
			args:     []string{"Dockerfile"},
			optional: true,
			install:  "https://github.com/hadolint/hadolint#install",
		},
	}
}

func golangci(fix bool) linter {
	l := linter{
		label:    "Golangci-lint",
		name:     "golangci-lint",
		args:     []string{"run", "--timeout=" + LintTimeout, "./..."},
		optional: true,
		install:  "go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	}
	if fix {
		l.label += " Fix"
		l.args = slices.Insert(l.args, 1, "--fix")
	}
	return l
}

// LintAll checks the action metadata and runs every linter. Optional linters
// that are not installed are skipped.
func LintAll() error {
	errs := []error{LintAction()}
	for _, l := range linters() {
		if err := l.run(); err != nil && !(l.optional && IsCommandNotFound(err)) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	PrintSuccess("All linters passed")
	return nil
}

// LintFormat fails when any file needs gofmt.
func LintFormat() error { return gofmtLinter.run() }

// LintVet runs go vet.
func LintVet() error { return vetLinter.run() }

// LintGolangci runs golangci-lint.
func LintGolangci() error { return golangci(false).run() }

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error { return golangci(true).run() }

// actionMetadata is the part of action.yml LintAction checks.
type actionMetadata struct {
	Inputs  map[string]yaml.Node `yaml:"inputs"`
	Outputs map[string]yaml.Node `yaml:"outputs"`
	Runs    struct {
		Using string   `yaml:"using"`
		Image string   `yaml:"image"`
		Args  []string `yaml:"args"`
	} `yaml:"runs"`
}

// LintAction checks that action.yml declares exactly the inputs the action
// reads and the outputs it publishes, and that it runs the Docker image.
func LintAction() error {
	data, err := os.ReadFile(filepath.Join(ProjectRoot, ActionFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", ActionFile, err)
	}
	problems, err := checkActionMetadata(data, inputs.Names(), actions.Outputs)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, p := range problems {
			PrintError(p)
		}
		return fmt.Errorf("%s: %d problem(s)", ActionFile, len(problems))
	}
	PrintSuccess("Action metadata")
	return nil
}

func checkActionMetadata(data []byte, wantInputs, wantOutputs []string) ([]string, error) {
	var meta actionMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ActionFile, err)
	}

	var problems []string
	problems = append(problems, diffNames("input", slices.Sorted(maps.Keys(meta.Inputs)), wantInputs)...)
	problems = append(problems, diffNames("output", slices.Sorted(maps.Keys(meta.Outputs)), wantOutputs)...)

	if meta.Runs.Using != "docker" || meta.Runs.Image != "Dockerfile" {
		problems = append(problems, fmt.Sprintf("runs: want docker image Dockerfile, got %s %s", meta.Runs.Using, meta.Runs.Image))
	}
	if len(meta.Runs.Args) > 0 && meta.Runs.Args[0] != "run" {
		problems = append(problems, fmt.Sprintf("runs.args: want run subcommand, got %s", strings.Join(meta.Runs.Args, " ")))
	}
	return problems, nil
}

// diffNames reports names declared but not handled, and handled but not declared.
func diffNames(kind string, declared, handled []string) []string {
	var problems []string
	for _, n := range declared {
		if !slices.Contains(handled, n) {
			problems = append(problems, fmt.Sprintf("%s %q is declared but not handled", kind, n))
		}
	}
	for _, n := range handled {
		if !slices.Contains(declared, n) {
			problems = append(problems, fmt.Sprintf("%s %q is missing from %s", kind, n, ActionFile))
		}
	}
	return problems
}
