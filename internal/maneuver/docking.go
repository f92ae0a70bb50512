package maneuver

import (
	"fmt"

	"TagDock/internal/state"

	"go.uber.org/zap"
)

// Correction is the relative setpoint written by one docking pulse.
type Correction struct {
	X   float64
	Y   float64
	Yaw float64
}

// Docking homes in on the marker with a single corrective setpoint per call.
type Docking struct {
	ch *state.Channel
	// YawGain scales the heading correction. Zero keeps heading untouched.
	YawGain float64
	logger  *zap.SugaredLogger
}

func NewDocking(ch *state.Channel, yawGain float64, logger *zap.SugaredLogger) *Docking {
	return &Docking{ch: ch, YawGain: yawGain, logger: logger}
}

// Correct publishes one corrective setpoint if a detection is active. It
// reports whether anything was written; without a detection it is a no-op.
func (d *Docking) Correct() (Correction, bool, error) {
	if !d.ch.Detected() {
		return Correction{}, false, nil
	}

	atDetection, err := d.ch.Pose(state.DetectionPose)
	if err != nil {
		return Correction{}, false, err
	}
	marker, err := d.ch.Pose(state.MarkerPose)
	if err != nil {
		return Correction{}, false, err
	}
	initial, err := d.ch.Pose(state.InitialPose)
	if err != nil {
		return Correction{}, false, err
	}

	d.logger.Infow("homing in on tag", "marker_x", marker.X, "marker_y", marker.Y)
	c := Correction{
		X: atDetection.X - marker.X - initial.X,
		Y: atDetection.Y - marker.Y - initial.Y,
	}
	// zero gain pins yaw to 0 even when a yaw input is NaN or Inf
	if d.YawGain != 0 {
		c.Yaw = d.YawGain * (atDetection.Yaw + marker.Yaw - initial.Yaw)
	}

	if err := d.ch.SetRelSetpoint(c.X, c.Y); err != nil {
		return c, false, fmt.Errorf("docking correction: %w", err)
	}
	if err := d.ch.SetRelYaw(c.Yaw); err != nil {
		return c, false, fmt.Errorf("docking correction: %w", err)
	}
	return c, true, nil
}
