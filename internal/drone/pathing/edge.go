package pathing

import (
	"TagDock/internal/common"
	"TagDock/internal/drone"
)

// Leg is one straight segment of a search pattern.
type Leg struct {
	Start drone.Setpoint
	End   drone.Setpoint
}

// Length is the straight-line distance covered by the leg.
func (l Leg) Length() float64 {
	return common.Distance(l.Start.X, l.Start.Y, l.End.X, l.End.Y)
}

// Legs splits a pattern into consecutive waypoint pairs, in order.
func Legs(p drone.Pattern) []Leg {
	path := p.Path()
	if len(path) < 2 {
		return nil
	}
	legs := make([]Leg, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		legs = append(legs, Leg{Start: path[i], End: path[i+1]})
	}
	return legs
}
