package maneuver

import "fmt"

// Phase is a supervisor state.
type Phase int

const (
	PhaseStartup Phase = iota
	PhaseWaitOffboard
	PhaseSearch
	PhasePreDockPause
	PhaseDockSettle
	PhaseLand
	PhaseDockHold
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseStartup:
		return "STARTUP"
	case PhaseWaitOffboard:
		return "WAIT_OFFBOARD"
	case PhaseSearch:
		return "SEARCH"
	case PhasePreDockPause:
		return "PRE_DOCK_PAUSE"
	case PhaseDockSettle:
		return "DOCK_SETTLE"
	case PhaseLand:
		return "LAND"
	case PhaseDockHold:
		return "DOCK_HOLD"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
