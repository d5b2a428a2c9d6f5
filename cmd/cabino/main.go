package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ENTRY POINT

var (
	version = "0.3.0"

	rootCmd = &cobra.Command{
		Use:           "cabino",
		Short:         "Cabino - kitchen cabinet price estimator: Telegram bot, HTTP API and CLI.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cabino",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cabino version %s\n", version)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// validation errors are already printed field by field
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
