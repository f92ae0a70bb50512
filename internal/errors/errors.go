package errors

import (
	"errors"
	"fmt"
)

var ErrMissingState = errors.New("ErrMissingState: shared state entry does not exist")
var ErrUnavailable = errors.New("ErrUnavailable: shared state entry could not be read")
var ErrInvalidSpeed = errors.New("ErrInvalidSpeed: speed must be a finite value greater than zero")
var ErrInvalidSetpoint = errors.New("ErrInvalidSetpoint: setpoint coordinates must be finite")
var ErrInvalidConfig = errors.New("ErrInvalidConfig: configuration is invalid")
var ErrCommandNotAcked = errors.New("ErrCommandNotAcked: autopilot did not acknowledge command")

// MissingStateError reports a shared state key that no external node has
// created. It is fatal when hit during startup validation.
type MissingStateError struct {
	Key string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("missing shared state %q", e.Key)
}

func (e *MissingStateError) Unwrap() error {
	return ErrMissingState
}

// Unavailable wraps an in-loop read failure so callers can treat it as a
// "not detected" sentinel instead of aborting the maneuver.
func Unavailable(key string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, key, cause)
}
