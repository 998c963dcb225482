package scenario

import (
	"encoding/json"
	"fmt"
)

// Point is a position in the map frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation in the map frame.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is a position plus orientation.
type Pose struct {
	Position   Point      `json:"position"`
	Quaternion Quaternion `json:"quaternion"`
}

// PoseWithCovariance carries a pose and its 6x6 covariance matrix in
// row-major order.
type PoseWithCovariance struct {
	Pose       Pose      `json:"pose"`
	Covariance []float64 `json:"covariance"`
}

// InitPoseAndGoal is the payload a successful scenario-submit ack carries in
// its message field: where the ego should be relocalized and where it
// should drive to.
type InitPoseAndGoal struct {
	InitialPose PoseWithCovariance `json:"initial_pose"`
	Goal        Pose               `json:"goal"`
}

// DecodeError marks a payload that was expected to carry structured data
// but failed to parse. It is distinguished from remote rejection: the call
// succeeded, the content did not.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode payload %q: %v", e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeInitPoseAndGoal parses the submit ack's message field. A malformed
// message yields a *DecodeError.
func DecodeInitPoseAndGoal(message string) (*InitPoseAndGoal, error) {
	var payload InitPoseAndGoal
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		return nil, &DecodeError{Raw: message, Err: err}
	}
	return &payload, nil
}
