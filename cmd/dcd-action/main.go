// dcd-action runs Maestro flows on Device Cloud from a GitHub workflow.
//
// Usage:
//
//	dcd-action                      # run the action with INPUT_* variables
//	dcd-action status --upload-id ID [--wait] [--watch] [--format terminal|markdown|json]
//	dcd-action version
//
// Locally, --env-file loads INPUT_API_KEY, INPUT_APP_FILE and friends from a dotenv file.
package main

import (
	"context"
	"os"

	"github.com/devicecloud-dev/device-cloud-for-maestro/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), &cli.App{}, os.Args[1:]))
}
