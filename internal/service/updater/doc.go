// Package updater orchestrates the self-update workflows.
//
// It composes the version record repository, the manifest/artifact source,
// the archive installer and the restart primitive into the check, update and
// force operations, tracking progress through the release.Phase lifecycle.
// A marker file in the target directory guards against two updater runs
// applying files at the same time.
package updater
