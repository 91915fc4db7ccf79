// Package main provides the entry point for the auto-release CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sgaunet/auto-release/internal/logger"
	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/failure"
	"github.com/sgaunet/auto-release/pkg/publish"
	"github.com/sgaunet/auto-release/pkg/setup"
	"github.com/sgaunet/bullets"
	"github.com/spf13/cobra"
)

var (
	logLevel     string
	publishFlags config.Flags
	setupVerbose bool
	log          = logger.NoLogger()
)

var rootCmd = &cobra.Command{
	Use:   "auto-release",
	Short: "Release npm packages to GitHub or GitLab",
	Long: `auto-release bumps the package version, derives a changelog from git
history, tags and pushes the release, creates the GitHub or GitLab release
and publishes the package to the npm registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		log = logger.NewLogger(logger.ResolveLevel(logLevel, publishFlags.Verbose || setupVerbose))
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [token-file]",
	Short: "Release the package of the current directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			publishFlags.TokenFile = args[0]
		}
		return runPublish(cmd.Context())
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Prepare the package of the current directory for auto-release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(config.Flags{Verbose: setupVerbose})
		if err != nil {
			return err
		}
		return setup.NewDefault(rt, log).Run(cmd.Context())
	},
}

var prepublishOnlyCmd = &cobra.Command{
	Use:   "prepublishOnly",
	Short: "Refuse registry publishes not started by auto-release",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		rt, err := newRuntime(config.Flags{})
		if err != nil {
			return err
		}
		return publish.Guard(rt)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"Set log level (debug, info, warn, error)")

	publishCmd.Flags().BoolVar(&publishFlags.DryRun, "dry-run", false, "Log mutating actions instead of running them")
	publishCmd.Flags().BoolVar(&publishFlags.CI, "ci", false, "Non-interactive mode, credentials come from the environment")
	publishCmd.Flags().BoolVar(&publishFlags.Verbose, "verbose", false, "Log commands and API requests")
	publishCmd.Flags().BoolVar(&publishFlags.AllowDirty, "allow-dirty", false, "Commit pending changes with the release")
	publishCmd.Flags().BoolVar(&publishFlags.NoDraft, "no-draft", false, "Publish the GitHub release instead of creating a draft")

	setupCmd.Flags().BoolVar(&setupVerbose, "verbose", false, "Log commands")

	rootCmd.AddCommand(publishCmd, setupCmd, prepublishOnlyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(report(log, err))
}

func runPublish(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return failure.Wrap("Invalid configuration", err)
	}
	log.Debug("Configuration loaded successfully")

	rt, err := newRuntime(publishFlags)
	if err != nil {
		return err
	}

	publisher, err := publish.NewDefault(rt, cfg, log)
	if err != nil {
		return err
	}

	result, err := publisher.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("Released " + result.Tag)
	return nil
}

func newRuntime(flags config.Flags) (config.Runtime, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Runtime{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.NewRuntime(os.Environ(), wd, flags), nil
}

// report prints err the way its kind requires and returns the exit code.
func report(log *bullets.Logger, err error) int {
	switch {
	case err == nil:
	case failure.IsBenign(err):
		log.Info(err.Error())
	case failure.IsExpected(err):
		fmt.Fprintln(os.Stderr, "Error: "+security.SanitizeString(err.Error()))
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", security.SanitizeString(fmt.Sprintf("%+v", err)))
	}
	return failure.ExitCode(err)
}
