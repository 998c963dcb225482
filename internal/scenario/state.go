package scenario

// State tracks the client-side progress of a single scenario run. The
// backing value is private: callers compare states with Before/AtLeast,
// they never do arithmetic on them.
type State int

const (
	Uninitialized State = iota
	LocalizationSucceeded
	GoalSet
	AutonomousModeReady
	AutonomousInProgress
	GoalArrived
)

var stateNames = map[State]string{
	Uninitialized:         "UNINITIALIZED",
	LocalizationSucceeded: "LOCALIZATION_SUCCEEDED",
	GoalSet:               "GOAL_SET",
	AutonomousModeReady:   "AUTONOMOUS_MODE_READY",
	AutonomousInProgress:  "AUTONOMOUS_IN_PROGRESS",
	GoalArrived:           "GOAL_ARRIVED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Before reports whether s is strictly earlier than other in the lifecycle.
func (s State) Before(other State) bool {
	return s < other
}

// AtLeast reports whether s has reached other.
func (s State) AtLeast(other State) bool {
	return s >= other
}

// MotionState is the ego vehicle's motion state as reported by the remote
// execution-state service.
type MotionState int

const (
	MotionUnknown MotionState = iota
	MotionStopped
	MotionStarting
	MotionMoving
)

// RoutingState is the navigation route's progress as reported by the remote
// execution-state service.
type RoutingState int

const (
	RoutingUnknown RoutingState = iota
	RoutingUnset
	RoutingSet
	RoutingArrived
	RoutingChanging
)

// ExecutionState is the result of one execution-state query. It is
// transient: only the latest snapshot is ever kept.
type ExecutionState struct {
	MotionState             MotionState  `json:"motion_state"`
	RoutingState            RoutingState `json:"routing_state"`
	AutonomousModeAvailable bool         `json:"is_autonomous_mode_available"`
}

// RecordingState is the remote trace-recording pipeline's state.
type RecordingState string

const (
	RecordingIdle    RecordingState = "idle"
	RecordingActive  RecordingState = "recording"
	RecordingWriting RecordingState = "writing_data"
	RecordingWritten RecordingState = "written"
)

// Flushing reports whether the recording pipeline is still busy with the
// current scenario's trace.
func (r RecordingState) Flushing() bool {
	return r == RecordingActive || r == RecordingWriting
}

// ClientStatus codes published on the client-status channel.
type ClientStatus int

const (
	StatusStopped  ClientStatus = 1
	StatusRunning  ClientStatus = 2
	StatusAutoMode ClientStatus = 3
)
