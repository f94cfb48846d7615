package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time with
// -ldflags "-X main.Version=...".
var Version = "dev"

// Build is the build identifier (commit hash), set the same way.
var Build = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			outputJSON(map[string]string{"version": Version, "build": Build})
			return
		}
		fmt.Printf("tmsync version %s (%s)\n", Version, Build)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
