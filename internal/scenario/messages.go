package scenario

import (
	"errors"
	"time"
)

// ErrServiceUnavailable marks a call that failed because the remote
// endpoint is not (yet) reachable. The orchestrator retries these
// indefinitely; everything else is handled per call site.
var ErrServiceUnavailable = errors.New("remote service unavailable")

// SubmitRequest asks the simulator to execute one scenario script.
type SubmitRequest struct {
	File string `json:"file"`
}

// Ack is the generic RPC response: success plus a free-form message. For
// scenario submission the message carries an InitPoseAndGoal payload.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PoseStamped is a pose tagged with a frame and a timestamp, as published
// on the goal-pose channel.
type PoseStamped struct {
	FrameID string    `json:"frame_id"`
	Stamp   time.Time `json:"stamp"`
	Pose    Pose      `json:"pose"`
}

// PoseWithCovarianceStamped is the localization-initialization request body.
type PoseWithCovarianceStamped struct {
	FrameID string             `json:"frame_id"`
	Stamp   time.Time          `json:"stamp"`
	Pose    PoseWithCovariance `json:"pose"`
}

// EngageCommand switches the driving stack into (or out of) autonomous
// control.
type EngageCommand struct {
	Engage bool      `json:"engage"`
	Stamp  time.Time `json:"stamp"`
}

// RemovalRequest asks the simulator to despawn NPCs. An empty target means
// all of them.
type RemovalRequest struct {
	Target string `json:"target"`
}

// RecordingStateResponse is the recording-state query response.
type RecordingStateResponse struct {
	State RecordingState `json:"state"`
}
