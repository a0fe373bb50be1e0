package release

// SentinelVersion is assumed when no local version record exists yet.
const SentinelVersion = "0.0.0"

// Manifest describes the currently published release, as served by the
// remote version endpoint. It is fetched fresh per check and never persisted.
type Manifest struct {
	// Version is the published version string.
	Version string `json:"version"`
	// URL optionally points at the release archive. When empty, callers
	// fall back to the configured archive location.
	URL string `json:"url,omitempty"`
}

// Record is the locally persisted version of the installed tree.
type Record struct {
	// Version is the installed version string, non-empty once written.
	Version string `json:"version"`
}

// Decision is the outcome of comparing the local record against the remote
// manifest. It is consumed immediately and never persisted.
type Decision struct {
	// Available reports whether the remote version is newer.
	Available bool
	// LocalVersion is the installed version used for the comparison.
	LocalVersion string
	// RemoteVersion is the published version, empty when the check failed
	// before the manifest was fetched.
	RemoteVersion string
}

// IsNewer reports whether remote sorts after local under strict lexicographic
// string ordering. This is intentionally not a semantic version comparison:
// "1.10.0" sorts before "1.9.0". Equal strings are never newer.
func IsNewer(remote, local string) bool {
	return remote > local
}
