package sequencer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awsim-client/internal/config"
	"awsim-client/internal/orchestrator"
	"awsim-client/internal/scenario"
	"awsim-client/internal/utils"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Intervals = config.IntervalConfig{
		PublishSettle:     time.Millisecond,
		SettleDelay:       time.Millisecond,
		CooldownDelay:     time.Millisecond,
		MonitorPoll:       time.Millisecond,
		EngagePoll:        time.Millisecond,
		RetryBackoff:      time.Millisecond,
		AvailabilityProbe: time.Millisecond,
	}
	return cfg
}

func testLogger() *utils.Logger {
	return utils.NewLoggerTo(utils.ERROR, io.Discard)
}

// fakeDriver arrives after a fixed number of polls per scenario and can be
// told to fail specific submissions.
type fakeDriver struct {
	submitErrs    map[string]error
	pollsToArrive int
	recSteps      []scenario.RecordingState

	state           scenario.State
	pollsSinceStart int

	submitted   []string
	pollCalls   int
	finishCalls int
	resetCalls  int
	recCalls    int
}

func (f *fakeDriver) Submit(ctx context.Context, path string) error {
	f.submitted = append(f.submitted, path)
	if err := f.submitErrs[filepath.Base(path)]; err != nil {
		return err
	}
	f.state = scenario.AutonomousInProgress
	f.pollsSinceStart = 0
	return nil
}

func (f *fakeDriver) PollOnce(ctx context.Context) (scenario.ExecutionState, error) {
	f.pollCalls++
	f.pollsSinceStart++
	if f.state == scenario.AutonomousInProgress && f.pollsSinceStart >= f.pollsToArrive {
		f.state = scenario.GoalArrived
	}
	return scenario.ExecutionState{RoutingState: scenario.RoutingSet}, nil
}

func (f *fakeDriver) FinishOnce(ctx context.Context) {
	f.finishCalls++
}

func (f *fakeDriver) Reset(ctx context.Context) error {
	f.resetCalls++
	f.state = scenario.Uninitialized
	return nil
}

func (f *fakeDriver) RecordingState(ctx context.Context) (scenario.RecordingState, error) {
	var step scenario.RecordingState
	if len(f.recSteps) == 0 {
		step = scenario.RecordingIdle
	} else if f.recCalls >= len(f.recSteps) {
		step = f.recSteps[len(f.recSteps)-1]
	} else {
		step = f.recSteps[f.recCalls]
	}
	f.recCalls++
	return step, nil
}

func (f *fakeDriver) State() scenario.State {
	return f.state
}

func writeScripts(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("scenario"), 0644))
	}
	return dir
}

func TestRunAllLexicographicOrder(t *testing.T) {
	dir := writeScripts(t, "b.script", "a.script", "c.script", "notes.txt")
	driver := &fakeDriver{pollsToArrive: 1}
	seq := New(driver, testConfig(), testLogger(), nil, false)

	result, err := seq.RunAll(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, driver.submitted, 3)
	assert.Equal(t, "a.script", filepath.Base(driver.submitted[0]))
	assert.Equal(t, "b.script", filepath.Base(driver.submitted[1]))
	assert.Equal(t, "c.script", filepath.Base(driver.submitted[2]))

	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 3, result.Completed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, driver.resetCalls)
}

func TestRunAllContinuesAfterFailure(t *testing.T) {
	dir := writeScripts(t, "a.script", "b.script")
	driver := &fakeDriver{
		pollsToArrive: 1,
		submitErrs:    map[string]error{"a.script": orchestrator.ErrLocalizationFailed},
	}
	metrics := utils.NewMetrics()
	seq := New(driver, testConfig(), testLogger(), metrics, false)

	result, err := seq.RunAll(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.ScenarioResults, 2)
	assert.Equal(t, OutcomeLocalizationFailed, result.ScenarioResults[0].Outcome)
	assert.Equal(t, scenario.Uninitialized, result.ScenarioResults[0].FinalState)
	assert.Equal(t, OutcomeCompleted, result.ScenarioResults[1].Outcome)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Failed)

	// Cleanup runs for the failed scenario too, and the batch went on.
	assert.Equal(t, 2, driver.resetCalls)
	assert.Len(t, driver.submitted, 2)

	snapshot := metrics.GetSnapshot()
	assert.Equal(t, 1, snapshot.ScenarioOutcomes[string(OutcomeLocalizationFailed)])
	assert.Equal(t, 1, snapshot.ScenarioOutcomes[string(OutcomeCompleted)])
}

func TestRunAllWaitsForTraceFlush(t *testing.T) {
	dir := writeScripts(t, "a.script")
	driver := &fakeDriver{
		pollsToArrive: 1,
		recSteps: []scenario.RecordingState{
			scenario.RecordingActive,
			scenario.RecordingWriting,
			scenario.RecordingIdle,
		},
	}
	seq := New(driver, testConfig(), testLogger(), nil, true)

	result, err := seq.RunAll(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.ScenarioResults, 1)
	assert.Equal(t, OutcomeCompleted, result.ScenarioResults[0].Outcome)
	// The monitor kept polling the recording pipeline until it settled.
	assert.Equal(t, 3, driver.recCalls)
	assert.GreaterOrEqual(t, driver.finishCalls, 1)
}

func TestRunAllWithoutTraceFlushSkipsRecordingQuery(t *testing.T) {
	dir := writeScripts(t, "a.script")
	driver := &fakeDriver{pollsToArrive: 2}
	seq := New(driver, testConfig(), testLogger(), nil, false)

	result, err := seq.RunAll(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.ScenarioResults[0].Outcome)
	assert.Zero(t, driver.recCalls)
	assert.Equal(t, 1, driver.finishCalls)
	assert.Equal(t, 2, driver.pollCalls)
}

func TestRunOneNeverWaitsForTraceFlush(t *testing.T) {
	dir := writeScripts(t, "solo.script")
	driver := &fakeDriver{
		pollsToArrive: 1,
		recSteps:      []scenario.RecordingState{scenario.RecordingActive},
	}
	// Even with the trace-flush option on, a single-file run ignores it.
	seq := New(driver, testConfig(), testLogger(), nil, true)

	result := seq.RunOne(context.Background(), filepath.Join(dir, "solo.script"))
	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Zero(t, driver.recCalls)
	assert.Equal(t, 1, driver.resetCalls)
}

func TestRunAllEmptyDirectory(t *testing.T) {
	driver := &fakeDriver{pollsToArrive: 1}
	seq := New(driver, testConfig(), testLogger(), nil, false)

	result, err := seq.RunAll(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, result.TotalScenarios)
	assert.Empty(t, driver.submitted)
}

func TestRunAllMissingDirectory(t *testing.T) {
	driver := &fakeDriver{}
	seq := New(driver, testConfig(), testLogger(), nil, false)

	_, err := seq.RunAll(context.Background(), filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeRejected, classify(&orchestrator.RejectionError{Op: "submit_scenario", Message: "nope"}))
	assert.Equal(t, OutcomeDecodeFailed, classify(&scenario.DecodeError{Raw: "junk", Err: errors.New("bad")}))
	assert.Equal(t, OutcomeLocalizationFailed, classify(orchestrator.ErrLocalizationFailed))
	assert.Equal(t, OutcomeAborted, classify(context.Canceled))
}
