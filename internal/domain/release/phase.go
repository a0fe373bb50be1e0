package release

import "fmt"

// Phase is the position of the orchestrator in the update lifecycle.
type Phase int

// Update lifecycle phases. A check moves Idle through Checking to UpToDate or
// UpdateAvailable; an install moves UpdateAvailable through Installing to
// Restarting. Failures return to Idle.
const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseUpToDate
	PhaseUpdateAvailable
	PhaseInstalling
	PhaseRestarting
)

// String returns the lowercase phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseUpToDate:
		return "up-to-date"
	case PhaseUpdateAvailable:
		return "update-available"
	case PhaseInstalling:
		return "installing"
	case PhaseRestarting:
		return "restarting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// CanInstall reports whether an install may start from this phase.
func (p Phase) CanInstall() bool {
	return p == PhaseUpdateAvailable
}
