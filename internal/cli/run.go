package cli

import (
	"github.com/spf13/cobra"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/action"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/actions"
	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/inputs"
	"github.com/devicecloud-dev/device-cloud-for-maestro/pkg/render"
)

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Upload the app and flows, wait for results and publish outputs",
		Args:  cobra.NoArgs,
		RunE:  app.runAction,
	}
}

func (app *App) runAction(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unexpected arguments: %v", args)
	}
	cfg := app.config
	theme := render.ThemeByName(cfg.Theme)

	_, err := action.Run(cmd.Context(), action.Deps{
		Inputs:       inputs.NewEnvSource(),
		Config:       cfg,
		Actions:      actions.New(app.Stdout, cfg.Debug),
		Runner:       app.runner(true),
		StatusRunner: app.runner(false),
		Log:          render.NewTerminal(theme, terminalWidth(app.Stdout)),
	})
	return err
}
