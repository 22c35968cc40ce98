// Package app provides the entry point for the inspection daemon.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags
	Version = "dev"
	// BuildTime is set by build flags
	BuildTime = "unknown"
)

// NewRootCmd creates the root command for inspectord.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inspectord",
		Short: "Manufacturing inspection cycle runner",
		Long: `inspectord coordinates repeating inspection cycles: it triggers all
configured capture sources in parallel, runs each frame through the
processing pipeline, and aggregates the results into one pass/fail
verdict per cycle.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("inspectord %s (built %s)\n", Version, BuildTime)
		},
	}
}
