package restart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/self-updater/internal/logger"
)

// Self re-invokes the current executable with the original arguments,
// replacing the running process. On success it does not return. On failure
// the caller keeps running on its current version.
func Self(ctx context.Context) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return fmt.Errorf("resolve symlinks: %w", err)
	}

	logger.InfoKV(ctx, "Restarting", "executable", executable)

	return restart(executable, os.Args)
}
