// Command server runs the Wildside enrichment backend and its operator tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wildside",
		Short: "Wildside route enrichment backend",
		Long: `wildside serves route submissions, annotations and user onboarding,
and enriches queued route plans with points of interest from Overpass.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(elementIDCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
