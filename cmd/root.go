// Package cmd defines and implements the CLI commands for the carrierscope
// executable.
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
		Use:   "carrierscope",
		Short: "Carrier registration lookup and eligibility filtering",
		Long: `carrierscope looks up carrier registration numbers against the public
snapshot endpoint, filters them against eligibility rules, and writes the
accepted records to CSV (or a URL list, or both).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults + CARRIER_* env)")

	cmd.AddCommand(newScanCmd())

	return cmd
}

// Execute is the main entry point. A fatal startup condition terminates the
// process with a non-zero status.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "carrierscope: %v\n", err)
		os.Exit(1)
	}
}
