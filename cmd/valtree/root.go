package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "valtree",
	Short: "valtree validates structured values against schema declarations",
	Long: `valtree builds a schema from a YAML or JSON declaration and validates
JSON documents against it, reporting errors as a structured tree.`,
	SilenceUsage: true,
}

// Execute runs the root command. Usage and declaration problems exit with
// code 2; invalid input data exits with code 1 (handled by the subcommands).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
