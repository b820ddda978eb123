// Package cli wires the dcd-action commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/config"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/poll"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/runner"
)

// App holds the process environment the commands run against.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewRunner builds the process runner. Defaults to runner.New.
	NewRunner func(runner.Config) poll.Runner

	// Dir is where the project config search starts. Defaults to
	// GITHUB_WORKSPACE, then the working directory.
	Dir string

	envFile string
	debug   bool
	config  *config.ResolvedConfig
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	app.defaults()
	root := newRootCommand(app)
	root.SetArgs(args)
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		debug := app.config != nil && app.config.Debug
		actions.New(app.Stdout, debug || app.debug).Fail(err)
	}
	return exitCode(err)
}

func (app *App) defaults() {
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.NewRunner == nil {
		app.NewRunner = func(cfg runner.Config) poll.Runner { return runner.New(cfg) }
	}
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "dcd-action",
		Short: "Run Maestro flows on Device Cloud from a GitHub workflow",
		Long: `Run Maestro flows on Device Cloud from a GitHub workflow.

Reads the action inputs from INPUT_* variables, uploads the app and flows with
the dcd CLI, waits for the results and publishes them as step outputs.
Without a subcommand it behaves like "run".`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
		RunE:              app.runAction,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	root.PersistentFlags().StringVar(&app.envFile, "env-file", "", "load environment variables from a dotenv file")
	root.PersistentFlags().BoolVar(&app.debug, "debug", false, "print debug output")

	root.AddCommand(newRunCommand(app), newStatusCommand(app), newVersionCommand(app))
	return root
}

// setup loads the env file and resolves project configuration.
func (app *App) setup(cmd *cobra.Command, _ []string) error {
	if app.envFile != "" {
		if err := godotenv.Load(app.envFile); err != nil {
			return fmt.Errorf("%w: loading env file: %w", ErrUsage, err)
		}
	}

	dir := app.Dir
	if dir == "" {
		dir = os.Getenv("GITHUB_WORKSPACE")
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.Resolve(dir)
	if err != nil {
		return err
	}
	if app.debug {
		cfg.Debug = true
	}
	app.config = cfg
	if cfg.Debug {
		if cfg.ConfigPath != "" {
			fmt.Fprintf(app.Stderr, "[DEBUG cli] using config %s\n", cfg.ConfigPath)
		}
		fmt.Fprintf(app.Stderr, "[DEBUG cli] api url %s (%s), dcd version %s (%s)\n",
			cfg.APIURL, cfg.APIURLSource, cfg.DCDVersion, cfg.VersionSource)
	}
	return nil
}

func (app *App) runner(live bool) poll.Runner {
	cfg := runner.Config{
		Err:           app.Stderr,
		Debug:         app.config.Debug,
		MaxBufferSize: app.config.MaxBufferSize,
	}
	if live {
		cfg.Out = app.Stdout
	}
	return app.NewRunner(cfg)
}
