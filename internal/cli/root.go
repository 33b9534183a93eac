// Package cli implements the engage command-line interface using
// Cobra. Each subcommand maps to one engine capability (serve,
// record, grant, summary, top).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "engage",
	Short: "engage — Smile-Share gamification engine",
	Long: `engage runs the Smile-Share gamification engine.
It turns purchases, donations, and activity joins into points, badges,
and levels, and serves the engagement REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
