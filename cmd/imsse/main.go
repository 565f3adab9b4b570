// Command imsse runs the Wi-Fi Calling entitlement engine and offers offline
// tools for inspecting its store and provisioning documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imsse/internal/platform/config"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "imsse",
		Short:         "Wi-Fi Calling entitlement engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")

	loadConfig := func() (*config.Config, error) {
		return config.Load(envFile)
	}
	root.AddCommand(
		newServeCmd(loadConfig),
		newRecordCmd(loadConfig),
		newVersCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
