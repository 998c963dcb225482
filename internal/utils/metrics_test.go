package utils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordCall("submit_scenario", true, 10*time.Millisecond)
	m.RecordCall("submit_scenario", false, 30*time.Millisecond)
	m.RecordCall("execution_state", true, 5*time.Millisecond)
	m.RecordScenarioOutcome("completed")
	m.RecordScenarioOutcome("completed")
	m.RecordScenarioOutcome("rejected")

	snapshot := m.GetSnapshot()

	submit := snapshot.Calls["submit_scenario"]
	if submit.TotalCalls != 2 || submit.SuccessfulCalls != 1 || submit.FailedCalls != 1 {
		t.Errorf("submit_scenario counters = %+v, expected 2/1/1", submit)
	}
	if submit.AvgDuration != 20*time.Millisecond {
		t.Errorf("submit_scenario avg = %s, expected 20ms", submit.AvgDuration)
	}

	if snapshot.ScenarioOutcomes["completed"] != 2 {
		t.Errorf("completed outcomes = %d, expected 2", snapshot.ScenarioOutcomes["completed"])
	}
	if snapshot.ScenarioOutcomes["rejected"] != 1 {
		t.Errorf("rejected outcomes = %d, expected 1", snapshot.ScenarioOutcomes["rejected"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(WARN, &buf)

	logger.Debug("hidden", nil)
	logger.Info("hidden too", nil)
	logger.Warn("visible", map[string]interface{}{"attempt": 3})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not a single JSON entry: %v", err)
	}
	if entry.Level != "WARN" || entry.Message != "visible" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Fields["attempt"] != float64(3) {
		t.Errorf("fields not preserved: %+v", entry.Fields)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":     DEBUG,
		"INFO":      INFO,
		"Warn":      WARN,
		"ERROR":     ERROR,
		"gibberish": INFO,
	}

	for input, expected := range cases {
		if got := ParseLogLevel(input); got != expected {
			t.Errorf("ParseLogLevel(%q) = %s, expected %s", input, got, expected)
		}
	}
}
