package state

import (
	"errors"
	"fmt"

	errs "TagDock/internal/errors"

	"go.uber.org/zap"
)

// Pose is a planar pose read from or written to the channel.
type Pose struct {
	X   float64
	Y   float64
	Yaw float64
}

// Channel wraps a Store with typed accessors for the keys the maneuver and
// the flight-controller bridge use.
type Channel struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewChannel(store Store, logger *zap.SugaredLogger) *Channel {
	return &Channel{store: store, logger: logger}
}

// Validate checks that every required key exists. The first missing key is
// returned as a *errors.MissingStateError.
func (c *Channel) Validate() error {
	for _, key := range RequiredKeys {
		if _, err := c.store.Get(key); err != nil {
			var missing *errs.MissingStateError
			if errors.As(err, &missing) {
				return err
			}
			return fmt.Errorf("validate %s: %w", key, err)
		}
	}
	return nil
}

// Detected reports whether the filtered detection flag is set. A flag that
// cannot be read counts as not detected.
func (c *Channel) Detected() bool {
	v, err := c.store.Get(KeyDetectionFlag)
	if err != nil {
		c.logger.Warnw("detection flag unavailable, treating as not detected",
			"error", errs.Unavailable(string(KeyDetectionFlag), err))
		return false
	}
	return v == 1
}

// ResetDetection clears both the filtered and the raw detection flags.
func (c *Channel) ResetDetection() error {
	if err := c.store.Set(KeyDetectionFlag, 0); err != nil {
		return fmt.Errorf("reset %s: %w", KeyDetectionFlag, err)
	}
	if err := c.store.Set(KeyRawDetection, 0); err != nil {
		return fmt.Errorf("reset %s: %w", KeyRawDetection, err)
	}
	return nil
}

func (c *Channel) OffboardReady() (bool, error) {
	v, err := c.store.Get(KeyOffboardReady)
	if err != nil {
		return false, errs.Unavailable(string(KeyOffboardReady), err)
	}
	return v >= 1, nil
}

func (c *Channel) SetOffboardReady(ready bool) error {
	return c.store.Set(KeyOffboardReady, boolValue(ready))
}

// SetRelSetpoint writes x before y.
func (c *Channel) SetRelSetpoint(x, y float64) error {
	if err := c.store.Set(KeyRelSetpointX, x); err != nil {
		return fmt.Errorf("write %s: %w", KeyRelSetpointX, err)
	}
	if err := c.store.Set(KeyRelSetpointY, y); err != nil {
		return fmt.Errorf("write %s: %w", KeyRelSetpointY, err)
	}
	return nil
}

func (c *Channel) SetRelYaw(yaw float64) error {
	if err := c.store.Set(KeyRelSetpointYaw, yaw); err != nil {
		return fmt.Errorf("write %s: %w", KeyRelSetpointYaw, err)
	}
	return nil
}

// RelSetpoint reads the commanded offset back. Only the flight-controller
// side calls this; entries that were never written read as zero.
func (c *Channel) RelSetpoint() Pose {
	var p Pose
	p.X, _ = c.store.Get(KeyRelSetpointX)
	p.Y, _ = c.store.Get(KeyRelSetpointY)
	p.Yaw, _ = c.store.Get(KeyRelSetpointYaw)
	return p
}

func (c *Channel) Land() error {
	if err := c.store.Set(KeyLandNow, 1); err != nil {
		return fmt.Errorf("write %s: %w", KeyLandNow, err)
	}
	return nil
}

// LandRequested reports whether land_now is set. A missing entry means no.
func (c *Channel) LandRequested() bool {
	v, err := c.store.Get(KeyLandNow)
	return err == nil && v == 1
}

// Pose reads a pose triple. Any failing entry makes the whole pose
// unavailable.
func (c *Channel) Pose(keys PoseKeys) (Pose, error) {
	var (
		p   Pose
		err error
	)
	if p.X, err = c.store.Get(keys.X); err != nil {
		return Pose{}, errs.Unavailable(string(keys.X), err)
	}
	if p.Y, err = c.store.Get(keys.Y); err != nil {
		return Pose{}, errs.Unavailable(string(keys.Y), err)
	}
	if p.Yaw, err = c.store.Get(keys.Yaw); err != nil {
		return Pose{}, errs.Unavailable(string(keys.Yaw), err)
	}
	return p, nil
}

func (c *Channel) SetPose(keys PoseKeys, p Pose) error {
	for _, kv := range []struct {
		key   Key
		value float64
	}{{keys.X, p.X}, {keys.Y, p.Y}, {keys.Yaw, p.Yaw}} {
		if err := c.store.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("write %s: %w", kv.key, err)
		}
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
