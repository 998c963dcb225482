// Package sequencer runs scenario scripts one after another: enumerate,
// submit, monitor until arrival, reset, next.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"awsim-client/internal/config"
	"awsim-client/internal/orchestrator"
	"awsim-client/internal/scenario"
	"awsim-client/internal/utils"
)

// Driver is the per-scenario surface the sequencer needs. Satisfied by
// *orchestrator.Orchestrator; the sequencer never looks past it.
type Driver interface {
	Submit(ctx context.Context, path string) error
	PollOnce(ctx context.Context) (scenario.ExecutionState, error)
	FinishOnce(ctx context.Context)
	Reset(ctx context.Context) error
	RecordingState(ctx context.Context) (scenario.RecordingState, error)
	State() scenario.State
}

// Outcome classifies how one scenario run ended.
type Outcome string

const (
	OutcomeCompleted          Outcome = "completed"
	OutcomeRejected           Outcome = "rejected"
	OutcomeDecodeFailed       Outcome = "decode_failed"
	OutcomeLocalizationFailed Outcome = "localization_failed"
	OutcomeAborted            Outcome = "aborted"
)

// ScenarioResult records one scenario run for the batch summary.
type ScenarioResult struct {
	File       string
	RunID      string
	Outcome    Outcome
	FinalState scenario.State
	Error      string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// BatchResult aggregates a whole batch run.
type BatchResult struct {
	ScenarioResults []ScenarioResult
	TotalScenarios  int
	Completed       int
	Failed          int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// Sequencer runs scenarios strictly one at a time.
type Sequencer struct {
	driver           Driver
	intervals        config.IntervalConfig
	fileExtension    string
	waitWritingTrace bool
	log              *utils.Logger
	metrics          *utils.Metrics
}

// New creates a sequencer. metrics may be nil.
func New(driver Driver, cfg *config.Config, log *utils.Logger, metrics *utils.Metrics, waitWritingTrace bool) *Sequencer {
	return &Sequencer{
		driver:           driver,
		intervals:        cfg.Intervals,
		fileExtension:    cfg.Scenario.FileExtension,
		waitWritingTrace: waitWritingTrace,
		log:              log,
		metrics:          metrics,
	}
}

// RunAll runs every scenario script directly under dir, in ascending file
// name order. A scenario's failure never stops the batch.
func (s *Sequencer) RunAll(ctx context.Context, dir string) (*BatchResult, error) {
	files, err := s.listScripts(dir)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		StartTime:       time.Now(),
		ScenarioResults: make([]ScenarioResult, 0, len(files)),
	}

	s.log.Info("Starting batch run", map[string]interface{}{
		"directory":      dir,
		"totalScenarios": len(files),
	})

	for i, file := range files {
		if ctx.Err() != nil {
			break
		}

		scenarioResult := s.runScenario(ctx, file, s.waitWritingTrace)
		result.ScenarioResults = append(result.ScenarioResults, scenarioResult)
		if scenarioResult.Outcome == OutcomeCompleted {
			result.Completed++
		} else {
			result.Failed++
		}

		if i < len(files)-1 {
			if err := sleep(ctx, s.intervals.CooldownDelay); err != nil {
				break
			}
		}
	}

	result.TotalScenarios = len(result.ScenarioResults)
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	return result, nil
}

// RunOne runs a single scenario file: same submit, settle, monitor and
// cleanup sequence, always waiting for arrival and never for trace flush.
func (s *Sequencer) RunOne(ctx context.Context, file string) ScenarioResult {
	return s.runScenario(ctx, file, false)
}

// runScenario drives one scenario end to end, including cleanup.
func (s *Sequencer) runScenario(ctx context.Context, file string, waitTrace bool) ScenarioResult {
	result := ScenarioResult{
		File:      file,
		RunID:     uuid.New().String()[:8],
		StartTime: time.Now(),
	}

	s.log.Info("Starting scenario", map[string]interface{}{
		"file":  file,
		"runId": result.RunID,
	})

	if err := s.driver.Submit(ctx, file); err != nil {
		result.Outcome = classify(err)
		result.Error = err.Error()
		s.log.Error("Scenario submission failed, skipping monitor loop", map[string]interface{}{
			"file":    file,
			"runId":   result.RunID,
			"outcome": string(result.Outcome),
			"error":   err.Error(),
		})
	} else if err := sleep(ctx, s.intervals.SettleDelay); err != nil {
		result.Outcome = OutcomeAborted
		result.Error = err.Error()
	} else {
		result.Outcome = s.monitor(ctx, waitTrace)
	}

	result.FinalState = s.driver.State()

	if err := s.driver.Reset(ctx); err != nil {
		s.log.Warn("Scenario reset interrupted", map[string]interface{}{
			"file":  file,
			"error": err.Error(),
		})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if s.metrics != nil {
		s.metrics.RecordScenarioOutcome(string(result.Outcome))
	}

	s.log.Info("Scenario finished", map[string]interface{}{
		"file":    file,
		"runId":   result.RunID,
		"outcome": string(result.Outcome),
	})

	return result
}

// monitor polls execution state until the goal is reached. With waitTrace
// set it additionally holds the next scenario back until the recording
// pipeline has flushed the current trace.
func (s *Sequencer) monitor(ctx context.Context, waitTrace bool) Outcome {
	for {
		if _, err := s.driver.PollOnce(ctx); err != nil {
			return OutcomeAborted
		}

		if s.driver.State() == scenario.GoalArrived {
			s.driver.FinishOnce(ctx)

			if !waitTrace {
				return OutcomeCompleted
			}

			recording, err := s.driver.RecordingState(ctx)
			if err != nil {
				return OutcomeAborted
			}
			if !recording.Flushing() {
				return OutcomeCompleted
			}
		}

		s.log.Info("Waiting for Ego to arrive at goal", nil)

		if err := sleep(ctx, s.intervals.MonitorPoll); err != nil {
			return OutcomeAborted
		}
	}
}

// listScripts returns the scenario files directly under dir, sorted by
// file name ascending.
func (s *Sequencer) listScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), s.fileExtension) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})

	return files, nil
}

// classify maps a submission error onto a result outcome.
func classify(err error) Outcome {
	var rejection *orchestrator.RejectionError
	if errors.As(err, &rejection) {
		return OutcomeRejected
	}

	var decode *scenario.DecodeError
	if errors.As(err, &decode) {
		return OutcomeDecodeFailed
	}

	if errors.Is(err, orchestrator.ErrLocalizationFailed) {
		return OutcomeLocalizationFailed
	}

	return OutcomeAborted
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
