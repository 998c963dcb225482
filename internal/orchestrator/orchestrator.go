// Package orchestrator owns one scenario's lifecycle: submit the script,
// re-establish localization, set the goal, engage autonomous control,
// track progress, and clean up afterwards.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"awsim-client/internal/config"
	"awsim-client/internal/retry"
	"awsim-client/internal/scenario"
	"awsim-client/internal/utils"
)

// mapFrame is the frame every published pose is expressed in.
const mapFrame = "map"

// Transport is the simulator/stack connection the orchestrator drives.
// Implemented by the bridge client; faked in tests.
type Transport interface {
	// Services (request/response).
	SubmitScenario(ctx context.Context, req scenario.SubmitRequest) (*scenario.Ack, error)
	InitializeLocalization(ctx context.Context, pose scenario.PoseWithCovarianceStamped) (*scenario.Ack, error)
	QueryExecutionState(ctx context.Context) (*scenario.ExecutionState, error)
	QueryRecordingState(ctx context.Context) (scenario.RecordingState, error)
	ClearRoute(ctx context.Context) (*scenario.Ack, error)
	ConfirmNPCRemoval(ctx context.Context, req scenario.RemovalRequest) (*scenario.Ack, error)

	// Broadcast-only channels.
	PublishScenario(ctx context.Context, req scenario.SubmitRequest) error
	PublishGoalPose(ctx context.Context, goal scenario.PoseStamped) error
	PublishEngage(ctx context.Context, cmd scenario.EngageCommand) error
	PublishNPCRemoval(ctx context.Context, req scenario.RemovalRequest) error
	PublishClientStatus(ctx context.Context, status scenario.ClientStatus) error
}

// ErrLocalizationFailed is returned by Submit when localization
// initialization exhausted its retry budget.
var ErrLocalizationFailed = errors.New("localization initialization failed")

// RejectionError is an RPC that responded with success=false.
type RejectionError struct {
	Op      string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Op, e.Message)
}

// Orchestrator drives one scenario at a time. It is not safe for
// concurrent use; the whole client is sequential by construction.
type Orchestrator struct {
	transport Transport
	intervals config.IntervalConfig
	retries   config.RetryConfig
	log       *utils.Logger

	state       scenario.State
	motionState scenario.MotionState
	snapshot    scenario.ExecutionState
	finishSent  bool
}

// New creates an orchestrator in the Uninitialized state.
func New(transport Transport, cfg *config.Config, log *utils.Logger) *Orchestrator {
	return &Orchestrator{
		transport:   transport,
		intervals:   cfg.Intervals,
		retries:     cfg.Retry,
		log:         log,
		state:       scenario.Uninitialized,
		motionState: scenario.MotionStopped,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() scenario.State {
	return o.state
}

// Snapshot returns the latest execution-state snapshot.
func (o *Orchestrator) Snapshot() scenario.ExecutionState {
	return o.snapshot
}

// Submit broadcasts and submits a scenario script, then drives the happy
// path up to engagement: localization, goal, engage. Failures are typed:
// *RejectionError for a remote refusal, *scenario.DecodeError for a
// malformed ack payload, ErrLocalizationFailed for retry exhaustion.
func (o *Orchestrator) Submit(ctx context.Context, path string) error {
	o.publishStatus(ctx, scenario.StatusRunning)

	req := scenario.SubmitRequest{File: path}
	if err := o.transport.PublishScenario(ctx, req); err != nil {
		o.log.Warn("Failed to broadcast scenario request", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
	}

	o.log.Info("Sent scenario request", map[string]interface{}{"file": path})

	if err := sleep(ctx, o.intervals.PublishSettle); err != nil {
		return err
	}

	var ack *scenario.Ack
	err := o.callUntilAvailable(ctx, "scenario submit", func(ctx context.Context) error {
		resp, err := o.transport.SubmitScenario(ctx, req)
		if err != nil {
			return err
		}
		ack = resp
		return nil
	})
	if err != nil {
		return err
	}

	if !ack.Success {
		o.log.Error("Simulator failed to process the script file", map[string]interface{}{
			"file":  path,
			"error": ack.Message,
		})
		return &RejectionError{Op: "submit_scenario", Message: ack.Message}
	}

	o.log.Info("Script file was processed properly", map[string]interface{}{"file": path})

	payload, err := scenario.DecodeInitPoseAndGoal(ack.Message)
	if err != nil {
		o.log.Error("Ego initial pose and goal are unknown", map[string]interface{}{
			"message": ack.Message,
		})
		return err
	}

	if !o.ReLocalize(ctx, payload.InitialPose) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrLocalizationFailed
	}

	o.SetGoal(ctx, payload.Goal)

	return o.AwaitEngagement(ctx)
}

// ReLocalize re-seeds localization with the scenario's initial pose, with a
// fresh timestamp per attempt. Returns true and advances the state on the
// first success; false after the retry budget is spent.
func (o *Orchestrator) ReLocalize(ctx context.Context, pose scenario.PoseWithCovariance) bool {
	policy := retry.Bounded(o.retries.LocalizationAttempts, o.intervals.RetryBackoff)

	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		req := scenario.PoseWithCovarianceStamped{
			FrameID: mapFrame,
			Stamp:   time.Now(),
			Pose:    pose,
		}

		var ack *scenario.Ack
		if err := o.callUntilAvailable(ctx, "localization initialization", func(ctx context.Context) error {
			resp, err := o.transport.InitializeLocalization(ctx, req)
			if err != nil {
				return err
			}
			ack = resp
			return nil
		}); err != nil {
			return err
		}

		if !ack.Success {
			return &RejectionError{Op: "initialize_localization", Message: ack.Message}
		}
		return nil
	}, func(attempt int, err error) {
		o.log.Error("Re-localization failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
	})
	if err != nil {
		o.log.Error("Localization failed", map[string]interface{}{"error": err.Error()})
		return false
	}

	o.log.Info("Re-localization succeeded", nil)
	o.advanceTo(scenario.LocalizationSucceeded)
	return true
}

// SetGoal broadcasts the ego's destination. Fire-and-forget: no ack is
// awaited.
func (o *Orchestrator) SetGoal(ctx context.Context, goal scenario.Pose) {
	msg := scenario.PoseStamped{
		FrameID: mapFrame,
		Stamp:   time.Now(),
		Pose:    goal,
	}

	if err := o.transport.PublishGoalPose(ctx, msg); err != nil {
		o.log.Warn("Failed to broadcast goal pose", map[string]interface{}{
			"error": err.Error(),
		})
	}

	o.advanceTo(scenario.GoalSet)
	o.log.Info("Ego destination set", nil)
}

// Engage broadcasts the autonomous-engage command and signals auto mode.
func (o *Orchestrator) Engage(ctx context.Context) {
	cmd := scenario.EngageCommand{
		Engage: true,
		Stamp:  time.Now(),
	}

	if err := o.transport.PublishEngage(ctx, cmd); err != nil {
		o.log.Warn("Failed to broadcast engage command", map[string]interface{}{
			"error": err.Error(),
		})
	}

	o.log.Info("Autonomous mode activated", nil)
	o.advanceTo(scenario.AutonomousInProgress)
	o.publishStatus(ctx, scenario.StatusAutoMode)
}

// PollOnce queries the remote execution state and folds it into the state
// machine: engage as soon as autonomous mode becomes available, and detect
// arrival only while autonomous driving is in progress. An ARRIVED report
// seen before engagement is ignored.
func (o *Orchestrator) PollOnce(ctx context.Context) (scenario.ExecutionState, error) {
	var snap *scenario.ExecutionState
	err := o.callUntilAvailable(ctx, "execution state", func(ctx context.Context) error {
		resp, err := o.transport.QueryExecutionState(ctx)
		if err != nil {
			return err
		}
		snap = resp
		return nil
	})
	if err != nil {
		return scenario.ExecutionState{}, err
	}

	o.snapshot = *snap
	o.motionState = snap.MotionState

	if snap.AutonomousModeAvailable && o.state.Before(scenario.AutonomousModeReady) {
		o.log.Info("Autonomous operation mode is ready", nil)
		o.advanceTo(scenario.AutonomousModeReady)
		o.Engage(ctx)
	}

	if snap.RoutingState == scenario.RoutingArrived && o.state == scenario.AutonomousInProgress {
		o.log.Info("Arrived destination", nil)
		o.advanceTo(scenario.GoalArrived)
	}

	return *snap, nil
}

// AwaitEngagement polls until the driving stack has been engaged.
func (o *Orchestrator) AwaitEngagement(ctx context.Context) error {
	for o.state.Before(scenario.AutonomousInProgress) {
		if _, err := o.PollOnce(ctx); err != nil {
			return err
		}
		if o.state.AtLeast(scenario.AutonomousInProgress) {
			break
		}
		if err := sleep(ctx, o.intervals.EngagePoll); err != nil {
			return err
		}
	}
	return nil
}

// RecordingState queries the remote trace-recording pipeline.
func (o *Orchestrator) RecordingState(ctx context.Context) (scenario.RecordingState, error) {
	var state scenario.RecordingState
	err := o.callUntilAvailable(ctx, "recording state", func(ctx context.Context) error {
		resp, err := o.transport.QueryRecordingState(ctx)
		if err != nil {
			return err
		}
		state = resp
		return nil
	})
	return state, err
}

// FinishOnce broadcasts the stopped status exactly once per scenario run.
// Further calls are no-ops until Reset.
func (o *Orchestrator) FinishOnce(ctx context.Context) {
	if o.finishSent {
		return
	}
	o.publishStatus(ctx, scenario.StatusStopped)
	o.finishSent = true
}

// Reset clears the route, despawns NPCs, and returns the orchestrator to
// the Uninitialized state. Remote failures are logged, never fatal.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.clearRoute(ctx)
	o.removeNPCs(ctx)

	o.state = scenario.Uninitialized
	o.motionState = scenario.MotionStopped
	o.snapshot = scenario.ExecutionState{}
	o.finishSent = false

	return ctx.Err()
}

// clearRoute drops the planned route; outcome is logged either way.
func (o *Orchestrator) clearRoute(ctx context.Context) {
	var ack *scenario.Ack
	err := o.callUntilAvailable(ctx, "route clearing", func(ctx context.Context) error {
		resp, err := o.transport.ClearRoute(ctx)
		if err != nil {
			return err
		}
		ack = resp
		return nil
	})
	if err != nil {
		o.log.Error("Route clearing failed", map[string]interface{}{"error": err.Error()})
		return
	}

	o.log.Info("Route clearing", map[string]interface{}{
		"success": ack.Success,
		"message": ack.Message,
	})
}

// removeNPCs broadcasts a remove-all request, then confirms via RPC with a
// bounded retry. Exhaustion is logged but does not block cleanup.
func (o *Orchestrator) removeNPCs(ctx context.Context) {
	req := scenario.RemovalRequest{Target: ""}

	if err := o.transport.PublishNPCRemoval(ctx, req); err != nil {
		o.log.Warn("Failed to broadcast NPC removal request", map[string]interface{}{
			"error": err.Error(),
		})
	}

	policy := retry.Bounded(o.retries.NPCRemovalAttempts, o.intervals.RetryBackoff)
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		var ack *scenario.Ack
		if err := o.callUntilAvailable(ctx, "npc removal", func(ctx context.Context) error {
			resp, err := o.transport.ConfirmNPCRemoval(ctx, req)
			if err != nil {
				return err
			}
			ack = resp
			return nil
		}); err != nil {
			return err
		}

		if !ack.Success {
			return &RejectionError{Op: "npc_removal_confirm", Message: ack.Message}
		}
		return nil
	}, nil)
	if err != nil {
		o.log.Error("Failed to remove NPC vehicle(s)", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	o.log.Info("NPCs removed", nil)
}

// callUntilAvailable runs op, retrying indefinitely while the remote
// endpoint reports itself unavailable. Any other failure is returned to
// the caller immediately; a warning is logged per unavailable attempt.
func (o *Orchestrator) callUntilAvailable(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var opErr error
	err := retry.Do(ctx, retry.Unbounded(o.intervals.AvailabilityProbe), func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && errors.Is(err, scenario.ErrServiceUnavailable) {
			return err
		}
		opErr = err
		return nil
	}, func(attempt int, err error) {
		o.log.Warn("Service not available, waiting", map[string]interface{}{
			"service": name,
			"attempt": attempt,
		})
	})
	if err != nil {
		return err
	}
	return opErr
}

// publishStatus broadcasts a client status code; failures are logged only.
func (o *Orchestrator) publishStatus(ctx context.Context, status scenario.ClientStatus) {
	if err := o.transport.PublishClientStatus(ctx, status); err != nil {
		o.log.Warn("Failed to broadcast client status", map[string]interface{}{
			"status": int(status),
			"error":  err.Error(),
		})
	}
}

// advanceTo moves the state forward. Backward moves are ignored: within a
// run the lifecycle is monotonic, only Reset rewinds it.
func (o *Orchestrator) advanceTo(s scenario.State) {
	if o.state.Before(s) {
		o.state = s
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
