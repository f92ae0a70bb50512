package drone

import "github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

// FlightMode is a PX4 main mode, carried in bits 16..23 of the heartbeat
// custom_mode field.
type FlightMode uint8

const (
	MANUAL     FlightMode = 1
	ALTCTL     FlightMode = 2
	POSCTL     FlightMode = 3
	AUTO       FlightMode = 4
	ACRO       FlightMode = 5
	OFFBOARD   FlightMode = 6
	STABILIZED FlightMode = 7
	RATTITUDE  FlightMode = 8
)

func (m FlightMode) String() string {
	switch m {
	case MANUAL:
		return "MANUAL"
	case ALTCTL:
		return "ALTCTL"
	case POSCTL:
		return "POSCTL"
	case AUTO:
		return "AUTO"
	case ACRO:
		return "ACRO"
	case OFFBOARD:
		return "OFFBOARD"
	case STABILIZED:
		return "STABILIZED"
	case RATTITUDE:
		return "RATTITUDE"
	default:
		return "UNKNOWN"
	}
}

// mainMode extracts the PX4 main mode from a heartbeat.
func mainMode(hb *common.MessageHeartbeat) FlightMode {
	return FlightMode((hb.CustomMode >> 16) & 0xff)
}

// isOffboard reports whether the heartbeat announces offboard control.
func isOffboard(hb *common.MessageHeartbeat) bool {
	if hb.BaseMode&common.MAV_MODE_FLAG_CUSTOM_MODE_ENABLED == 0 {
		return false
	}
	return mainMode(hb) == OFFBOARD
}
