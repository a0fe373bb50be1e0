package updater

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/self-updater/internal/logger"
)

const (
	// MarkerFilename marks that an update is being applied to the target
	// directory right now, to avoid parallel runs clobbering each other.
	MarkerFilename = "self-updater-marker.bin"

	// markerLifetime is the period after which a leftover marker from a
	// crashed run is considered stale and removed.
	markerLifetime = 5 * time.Minute
)

// isUpdateRunningNow checks for a fresh marker in the target directory and
// attempts recovery when the marker looks stale.
func isUpdateRunningNow(ctx context.Context, targetDir string) bool {
	markerPath := markerPath(targetDir)

	fileInfo, err := os.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is stale, removing it")

		if err = os.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// createMarker drops the in-progress marker into the target directory.
func createMarker(targetDir string) error {
	marker, err := os.Create(markerPath(targetDir))
	if err != nil {
		return err
	}

	return marker.Close()
}

// removeMarker deletes the marker, ignoring a marker that is already gone.
func removeMarker(targetDir string) {
	if _, err := os.Stat(markerPath(targetDir)); err == nil {
		_ = os.Remove(markerPath(targetDir))
	}
}

func markerPath(targetDir string) string {
	return filepath.Clean(filepath.Join(targetDir, MarkerFilename))
}

// terminateProcesses kills running processes whose executable name matches
// one of the managed names, so their files can be overwritten. The current
// process is never touched.
func terminateProcesses(names []string) error {
	managed := sliceToSet(names)

	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID {
			continue
		}

		if _, found := managed[process.Executable()]; !found {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(processID)
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
