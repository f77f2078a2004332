// Command droughtwatch is the drought dashboard CLI.
package main

import (
	"os"

	"github.com/droughtwatch/droughtwatch/internal/cli"
	"github.com/droughtwatch/droughtwatch/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps failure to exit code 1.
// Cobra already printed the error at this point.
func run() int {
	if err := cli.NewRootCmd(version.GetVersion()).Execute(); err != nil {
		return 1
	}
	return 0
}
