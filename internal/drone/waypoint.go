package drone

import "fmt"

// Setpoint is a vehicle-relative offset: X to the right, Y forward, meters.
type Setpoint struct {
	X float64
	Y float64
}

func NewSetpoint(x, y float64) Setpoint {
	return Setpoint{X: x, Y: y}
}

func (s Setpoint) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", s.X, s.Y)
}
