package scenario

import "testing"

func TestStateOrdering(t *testing.T) {
	ordered := []State{
		Uninitialized,
		LocalizationSucceeded,
		GoalSet,
		AutonomousModeReady,
		AutonomousInProgress,
		GoalArrived,
	}

	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Before(ordered[i+1]) {
			t.Errorf("%s should be before %s", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Before(ordered[i]) {
			t.Errorf("%s should not be before %s", ordered[i+1], ordered[i])
		}
		if !ordered[i+1].AtLeast(ordered[i]) {
			t.Errorf("%s should be at least %s", ordered[i+1], ordered[i])
		}
	}

	if !GoalArrived.AtLeast(GoalArrived) {
		t.Error("a state should be at least itself")
	}
	if GoalArrived.Before(GoalArrived) {
		t.Error("a state should not be before itself")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Uninitialized:         "UNINITIALIZED",
		LocalizationSucceeded: "LOCALIZATION_SUCCEEDED",
		GoalSet:               "GOAL_SET",
		AutonomousModeReady:   "AUTONOMOUS_MODE_READY",
		AutonomousInProgress:  "AUTONOMOUS_IN_PROGRESS",
		GoalArrived:           "GOAL_ARRIVED",
	}

	for state, expected := range cases {
		if state.String() != expected {
			t.Errorf("State(%d).String() = %s, expected %s", int(state), state.String(), expected)
		}
	}

	if State(99).String() != "UNKNOWN" {
		t.Errorf("out-of-range state should stringify as UNKNOWN, got %s", State(99).String())
	}
}

func TestRecordingStateFlushing(t *testing.T) {
	flushing := []RecordingState{RecordingActive, RecordingWriting}
	for _, state := range flushing {
		if !state.Flushing() {
			t.Errorf("%s should report as flushing", state)
		}
	}

	settled := []RecordingState{RecordingIdle, RecordingWritten, RecordingState("something_else")}
	for _, state := range settled {
		if state.Flushing() {
			t.Errorf("%s should not report as flushing", state)
		}
	}
}

func TestClientStatusCodes(t *testing.T) {
	if StatusStopped != 1 || StatusRunning != 2 || StatusAutoMode != 3 {
		t.Errorf("client status codes changed: stopped=%d running=%d auto=%d",
			StatusStopped, StatusRunning, StatusAutoMode)
	}
}
