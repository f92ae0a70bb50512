package drone

import (
	"fmt"
	"strings"
)

// Pattern is an ordered, immutable search pattern.
type Pattern struct {
	name      string
	waypoints []Setpoint
}

func NewPattern(name string, waypoints []Setpoint) Pattern {
	return Pattern{name: name, waypoints: append([]Setpoint(nil), waypoints...)}
}

func (p Pattern) Name() string {
	return p.name
}

// Path returns a copy of the waypoints in visiting order.
func (p Pattern) Path() []Setpoint {
	return append([]Setpoint(nil), p.waypoints...)
}

// Len is the number of waypoints, one more than the number of legs.
func (p Pattern) Len() int {
	return len(p.waypoints)
}

const (
	PatternLawnmower = "lawnmower"
	PatternCone      = "cone"
)

// DefaultLateralScale is the forward spacing between lawnmower passes.
const DefaultLateralScale = 0.6

// LawnmowerPattern sweeps ±0.5 m across and advances dy forward between
// passes, four passes in total.
func LawnmowerPattern(dy float64) Pattern {
	return NewPattern(PatternLawnmower, []Setpoint{
		{0.0, 0.0 * dy},
		{0.5, 0.0 * dy},
		{0.5, 1.0 * dy},
		{-0.5, 1.0 * dy},
		{-0.5, 2.0 * dy},
		{0.5, 2.0 * dy},
		{0.5, 3.0 * dy},
		{-0.5, 3.0 * dy},
		{-0.5, 4.0 * dy},
	})
}

// ConePattern is a forward expanding cone: 2 m forward, widening to ±0.9 m.
func ConePattern() Pattern {
	return NewPattern(PatternCone, []Setpoint{
		{0.0, 0.0},
		{0.3, 0.5},
		{-0.3, 0.5},
		{-0.6, 1.0},
		{0.6, 1.0},
		{0.9, 1.5},
		{-0.9, 1.5},
		{-0.9, 2.0},
		{0.9, 2.0},
	})
}

// PatternByName resolves a configured pattern name. dy only applies to the
// lawnmower pattern.
func PatternByName(name string, dy float64) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PatternLawnmower, "":
		return LawnmowerPattern(dy), nil
	case PatternCone:
		return ConePattern(), nil
	default:
		return Pattern{}, fmt.Errorf("unknown search pattern %q", name)
	}
}
