// Package release contains core domain types for the update logic.
//
// It defines the remote Manifest, the local version Record, the Decision
// produced by a check, the lifecycle Phase of the orchestrator and the
// IsNewer version ordering rule.
package release
