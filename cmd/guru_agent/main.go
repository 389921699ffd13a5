// Package main provides the guru_agent CLI: the intake HTTP service plus
// offline validation, course filtering and dashboard derivation commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "guru_agent",
	Short:         "Matching Guru intake service and tools",
	Long:          "Matching Guru runs the participant intake wizard as a REST API and derives the participant dashboard from upstream data.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
