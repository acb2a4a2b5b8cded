// Package cmd defines and implements the CLI commands for the
// catalog-migrator executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-migrator",
		Short: "Migrates comic issue data from the source wiki into the catalog",
		Long: `catalog-migrator crawls infobox markup from the source wiki, extracts
normalized issue records, and reconciles them transactionally against the
existing catalog, reporting divergences instead of overwriting them.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
