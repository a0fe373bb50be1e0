package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/self-updater/internal/config"
	"github.com/oshokin/self-updater/internal/logger"
	"github.com/oshokin/self-updater/internal/service/updater"
	"github.com/oshokin/self-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// checkOnly compares versions without mutating anything.
	checkOnly bool
	// applyUpdate installs and restarts when a newer version is published.
	applyUpdate bool
	// forceUpdate installs and restarts regardless of versions.
	forceUpdate bool
	// restartOnly re-invokes the executable without updating.
	restartOnly bool
	// logLevel sets the minimum logging level.
	logLevel string

	// rootCmd represents the base command for checking and applying updates.
	rootCmd = &cobra.Command{
		Use:   "self-updater",
		Short: "Check for and apply application updates",
		Long: `Keeps an installed application tree in sync with a published release.

Reads the local version record, fetches the remote manifest and compares the
two. With --update, a newer release is downloaded, applied over the install
directory and the process is restarted. --force skips the comparison and
--restart only re-invokes the executable. Without flags, only a check is
performed and nothing is mutated.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath: configPath,
				Check:      checkOnly,
				Update:     applyUpdate,
				Force:      forceUpdate,
				Restart:    restartOnly,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the self-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVar(&checkOnly, "check", false, "check for updates without installing")
	rootCmd.Flags().BoolVar(&applyUpdate, "update", false, "check and apply updates if available")
	rootCmd.Flags().BoolVar(&forceUpdate, "force", false, "force re-download regardless of version")
	rootCmd.Flags().BoolVar(&restartOnly, "restart", false, "restart the application without updating")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")

	rootCmd.MarkFlagsMutuallyExclusive("check", "update", "force", "restart")
}
