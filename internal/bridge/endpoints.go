package bridge

import (
	"context"
	"net/http"

	"awsim-client/internal/scenario"
)

// Service endpoints (request/response).

// SubmitScenario asks the simulator to execute a scenario script.
func (c *Client) SubmitScenario(ctx context.Context, req scenario.SubmitRequest) (*scenario.Ack, error) {
	var resp scenario.Ack
	err := c.call(ctx, "submit_scenario", http.MethodPost, "/dynamic_control/script", req, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// InitializeLocalization re-seeds the localization stack with a pose.
func (c *Client) InitializeLocalization(ctx context.Context, pose scenario.PoseWithCovarianceStamped) (*scenario.Ack, error) {
	var resp scenario.Ack
	err := c.call(ctx, "initialize_localization", http.MethodPost, "/api/localization/initialize", pose, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// QueryExecutionState fetches the current motion/routing/operation snapshot.
func (c *Client) QueryExecutionState(ctx context.Context) (*scenario.ExecutionState, error) {
	var resp scenario.ExecutionState
	err := c.call(ctx, "execution_state", http.MethodGet, "/simulation/execution_state", nil, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// QueryRecordingState fetches the trace-recording pipeline state.
func (c *Client) QueryRecordingState(ctx context.Context) (scenario.RecordingState, error) {
	var resp scenario.RecordingStateResponse
	err := c.call(ctx, "recording_state", http.MethodGet, "/monitor/recording/state", nil, &resp)
	if err != nil {
		return "", err
	}

	return resp.State, nil
}

// ClearRoute drops the currently planned route.
func (c *Client) ClearRoute(ctx context.Context) (*scenario.Ack, error) {
	var resp scenario.Ack
	err := c.call(ctx, "clear_route", http.MethodPost, "/api/routing/clear_route", struct{}{}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// ConfirmNPCRemoval confirms that a broadcast removal request was honored.
func (c *Client) ConfirmNPCRemoval(ctx context.Context, req scenario.RemovalRequest) (*scenario.Ack, error) {
	var resp scenario.Ack
	err := c.call(ctx, "npc_removal_confirm", http.MethodPost, "/dynamic_control/vehicle/removing", req, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// Publish-only channels (fire-and-forget, no response body expected).

// PublishScenario broadcasts the scenario request on the script channel.
func (c *Client) PublishScenario(ctx context.Context, req scenario.SubmitRequest) error {
	return c.call(ctx, "scenario_topic", http.MethodPost, "/publish/scenario_script", req, nil)
}

// PublishGoalPose broadcasts the ego's destination.
func (c *Client) PublishGoalPose(ctx context.Context, goal scenario.PoseStamped) error {
	return c.call(ctx, "goal_pose_topic", http.MethodPost, "/publish/goal_pose", goal, nil)
}

// PublishEngage broadcasts the autonomous-engage command.
func (c *Client) PublishEngage(ctx context.Context, cmd scenario.EngageCommand) error {
	return c.call(ctx, "engage_topic", http.MethodPost, "/publish/engage", cmd, nil)
}

// PublishNPCRemoval broadcasts the NPC despawn request.
func (c *Client) PublishNPCRemoval(ctx context.Context, req scenario.RemovalRequest) error {
	return c.call(ctx, "npc_removal_topic", http.MethodPost, "/publish/npc_removal", req, nil)
}

// PublishClientStatus broadcasts the client's run status code.
func (c *Client) PublishClientStatus(ctx context.Context, status scenario.ClientStatus) error {
	body := struct {
		Status scenario.ClientStatus `json:"status"`
	}{Status: status}
	return c.call(ctx, "client_status_topic", http.MethodPost, "/publish/client_status", body, nil)
}
