//go:build !windows

package restart

import (
	"fmt"
	"os"
	"syscall"
)

// restart replaces the current process image in place, preserving the PID.
// No code after a successful call executes in this process.
func restart(executable string, args []string) error {
	if err := syscall.Exec(executable, args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", executable, err)
	}

	return nil
}
