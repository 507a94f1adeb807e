package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsreport/internal/constants"
	"github.com/ludo-technologies/jsreport/internal/version"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitFailure)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "jsreport - complexity reports for JavaScript/TypeScript builds",
		Long: `jsreport collects the source files of a build, measures their complexity
(cyclomatic, Halstead, SLOC, maintainability index) and sends one report per
build to the configured reporters: console, json, yaml, msgpack or s3.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintln(out, version.Get().String())
			} else {
				fmt.Fprintf(out, "%s version %s\n", constants.ToolName, version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
