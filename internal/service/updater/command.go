package updater

import (
	"context"
	"fmt"

	"github.com/oshokin/self-updater/internal/config"
	"github.com/oshokin/self-updater/internal/logger"
)

// Options are inputs accepted by the updater entry point. Exactly one of the
// mode flags is expected; Check is the default when none is set.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Check only compares versions, mutating nothing.
	Check bool
	// Update installs and restarts when a newer version is published.
	Update bool
	// Force installs and restarts regardless of the published version.
	Force bool
	// Restart re-invokes the executable without updating.
	Restart bool
}

// Run executes the selected workflow and is the public entry point for the CLI.
//
// Check failures are logged and degrade to "no update available" so the host
// keeps running on its current version; install and restart failures are
// returned to the caller.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "self-updater")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	u := New(cfg)

	switch {
	case opts.Restart:
		return u.Restart(ctx)
	case opts.Force:
		return u.Force(ctx)
	case opts.Update:
		decision, err := u.Check(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "Check failed, keeping current version", "error", err)
			return nil
		}

		if !decision.Available {
			return nil
		}

		return u.Update(ctx)
	default:
		decision, err := u.Check(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "Check failed, keeping current version", "error", err)
			return nil
		}

		if decision.Available {
			logger.Infof(ctx, "Update available: %s -> %s",
				decision.LocalVersion, decision.RemoteVersion)
		}

		return nil
	}
}
