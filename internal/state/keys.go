package state

// Key names a scalar entry in the shared command channel. The values match
// the parameter names used by the detection and flight-controller nodes.
type Key string

const (
	KeyOffboardReady Key = "/offboard"
	KeyDetectionFlag Key = "/filtered_detect"
	KeyRawDetection  Key = "/tag_detect"
	KeyLandNow       Key = "/land_now"

	KeyMarkerX   Key = "/filtered_tag_x"
	KeyMarkerY   Key = "/filtered_tag_y"
	KeyMarkerYaw Key = "/filtered_tag_yaw"

	KeyDetectionPoseX   Key = "/pose_last_tagupdate_x"
	KeyDetectionPoseY   Key = "/pose_last_tagupdate_y"
	KeyDetectionPoseYaw Key = "/pose_last_tagupdate_yaw"

	KeyInitialX   Key = "/x_init"
	KeyInitialY   Key = "/y_init"
	KeyInitialYaw Key = "/yaw_init"

	KeyRelSetpointX   Key = "/x_rel_setpoint"
	KeyRelSetpointY   Key = "/y_rel_setpoint"
	KeyRelSetpointYaw Key = "/yaw_rel_setpoint"

	// Written by the flight-controller bridge, never by the maneuver core.
	KeyPoseX   Key = "/pose_x"
	KeyPoseY   Key = "/pose_y"
	KeyPoseYaw Key = "/pose_yaw"
)

// PoseKeys groups the three keys of a pose triple.
type PoseKeys struct {
	X, Y, Yaw Key
}

var (
	MarkerPose    = PoseKeys{KeyMarkerX, KeyMarkerY, KeyMarkerYaw}
	DetectionPose = PoseKeys{KeyDetectionPoseX, KeyDetectionPoseY, KeyDetectionPoseYaw}
	InitialPose   = PoseKeys{KeyInitialX, KeyInitialY, KeyInitialYaw}
	CurrentPose   = PoseKeys{KeyPoseX, KeyPoseY, KeyPoseYaw}
)

// RequiredKeys are the entries the maneuver reads. External nodes must have
// created all of them before the supervisor starts.
var RequiredKeys = []Key{
	KeyOffboardReady,
	KeyDetectionFlag,
	KeyMarkerX, KeyMarkerY, KeyMarkerYaw,
	KeyDetectionPoseX, KeyDetectionPoseY, KeyDetectionPoseYaw,
	KeyInitialX, KeyInitialY, KeyInitialYaw,
}
