package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsreport/app"
	"github.com/ludo-technologies/jsreport/internal/analyzer"
	"github.com/ludo-technologies/jsreport/internal/buildtool"
	"github.com/ludo-technologies/jsreport/internal/config"
	"github.com/ludo-technologies/jsreport/service"
)

type runOptions struct {
	reporters      []string
	level          string
	outputDir      string
	reportFilename string
	configPath     string
	watch          bool
	verbose        bool
	noProgress     bool
}

func runCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [path...]",
		Short: "Build a complexity report for JavaScript/TypeScript files",
		Long: `Collect the JavaScript/TypeScript files under the given paths (default: the
current directory), measure them and dispatch the report to every reporter.

Examples:
  jsreport run src/
  jsreport run -r console -r json -l file src/
  jsreport run --reporter json,yaml --output-dir reports --report-filename nightly .
  jsreport run --watch src/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, args)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.reporters, "reporter", "r", nil,
		"Reporters to dispatch to (repeatable or comma-separated): console, json, yaml, msgpack, s3")
	cmd.Flags().StringVarP(&opts.level, "level", "l", "",
		"Report granularity: raw, file, project, method")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "",
		"Directory for file reports (default: complexity)")
	cmd.Flags().StringVar(&opts.reportFilename, "report-filename", "",
		"Base name of file reports (default: timestamped)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false,
		"Rebuild the report whenever a source file changes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Log build diagnostics to stderr")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false,
		"Disable the progress bar")

	return cmd
}

func runReport(cmd *cobra.Command, opts *runOptions, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	config.LoadEnv()

	configLoader := service.NewConfigurationLoader()
	base, err := configLoader.LoadConfig(opts.configPath, args[0])
	if err != nil {
		return err
	}
	cfg := configLoader.MergeConfig(base, service.ConfigOverrides{
		Reporters:      opts.reporters,
		Level:          opts.level,
		OutputDir:      opts.outputDir,
		ReportFilename: opts.reportFilename,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if opts.verbose {
		logger = log.New(cmd.ErrOrStderr(), "jsreport: ", log.LstdFlags)
	}

	pm := service.NewProgressManager(!opts.noProgress && !opts.watch)
	defer pm.Close()

	projectAnalyzer, err := analyzer.NewProjectAnalyzer(analyzerOptions(cfg.Analyzer), cfg.Analyzer.CacheSize)
	if err != nil {
		return err
	}
	projectAnalyzer.SetLogger(logger)
	projectAnalyzer.SetProgressManager(pm)

	loader, err := app.NewLoader(configLoader.ToConfiguration(cfg), projectAnalyzer, app.LoaderOptions{
		Registry: service.NewSinkRegistry(cmd.OutOrStdout()),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	compiler := buildtool.NewCompiler(buildtool.Options{
		Roots:            args,
		IncludePatterns:  cfg.Analysis.IncludePatterns,
		ExcludePatterns:  cfg.Analysis.ExcludePatterns,
		RespectGitignore: cfg.Analysis.RespectGitignore,
		Debounce:         cfg.Watch.DebounceInterval(),
	}, loader)
	compiler.SetLogger(logger)

	// Registered up front so a build without matching files still reports
	loader.Aggregator().Register(compiler)

	if !opts.watch {
		_, err := compiler.Run(contextOrBackground(cmd))
		return err
	}

	return watch(cmd, compiler, args)
}

func watch(cmd *cobra.Command, compiler *buildtool.Compiler, roots []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Watching %s for changes (Ctrl+C to stop)\n", strings.Join(roots, ", "))

	return compiler.Watch(ctx, func(result *buildtool.BuildResult, err error) {
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(stderr, "Error: build %d failed: %v\n", result.Cycle, err)
			return
		}
		fmt.Fprintf(stderr, "Build %d: %d files in %s\n", result.Cycle, result.Units, result.Duration.Round(time.Millisecond))
	})
}

func analyzerOptions(cfg config.AnalyzerConfig) analyzer.Options {
	return analyzer.Options{
		LogicalOr:  cfg.LogicalOr,
		SwitchCase: cfg.SwitchCase,
		ForIn:      cfg.ForIn,
		TryCatch:   cfg.TryCatch,
		NewMI:      cfg.NewMI,
	}
}

// contextOrBackground guards commands executed without a context in tests
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
