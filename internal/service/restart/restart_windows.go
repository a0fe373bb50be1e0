//go:build windows

package restart

import (
	"fmt"
	"os"
	"os/exec"
)

// restart spawns a detached copy of the executable and exits the current
// process once the spawn succeeds. Windows has no in-place exec, so the
// replacement window is the spawn latency only: the new process is running
// before this one terminates.
func restart(executable string, args []string) error {
	cmd := exec.Command(executable, args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", executable, err)
	}

	os.Exit(0)

	return nil // unreachable
}
