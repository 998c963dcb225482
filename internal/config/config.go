package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration.
type Config struct {
	Bridge    BridgeConfig   `yaml:"bridge"`
	Intervals IntervalConfig `yaml:"intervals"`
	Retry     RetryConfig    `yaml:"retry"`
	Scenario  ScenarioConfig `yaml:"scenario"`
}

// BridgeConfig defines how to reach the simulator bridge.
type BridgeConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	Timeout   time.Duration `yaml:"timeout"`
	AuthToken string        `yaml:"authToken"`
}

// IntervalConfig names every fixed sleep the client performs, so tests can
// run with millisecond values instead of wall-clock waits.
type IntervalConfig struct {
	// PublishSettle is the pause between broadcasting a scenario request
	// and issuing the submit RPC carrying the same payload.
	PublishSettle time.Duration `yaml:"publishSettle"`
	// SettleDelay gives the remote side time to start executing after a
	// successful submit, before the monitor loop begins.
	SettleDelay time.Duration `yaml:"settleDelay"`
	// CooldownDelay separates one scenario's cleanup from the next submit.
	CooldownDelay time.Duration `yaml:"cooldownDelay"`
	// MonitorPoll is the monitor loop's execution-state polling interval.
	MonitorPoll time.Duration `yaml:"monitorPoll"`
	// EngagePoll is the polling interval while waiting for engagement.
	EngagePoll time.Duration `yaml:"engagePoll"`
	// RetryBackoff separates bounded retry attempts (localization, NPC
	// removal confirmation).
	RetryBackoff time.Duration `yaml:"retryBackoff"`
	// AvailabilityProbe separates attempts while waiting for a remote
	// service to become reachable.
	AvailabilityProbe time.Duration `yaml:"availabilityProbe"`
}

// RetryConfig defines the bounded retry budgets.
type RetryConfig struct {
	LocalizationAttempts int `yaml:"localizationAttempts"`
	NPCRemovalAttempts   int `yaml:"npcRemovalAttempts"`
}

// ScenarioConfig defines scenario file handling.
type ScenarioConfig struct {
	FileExtension string `yaml:"fileExtension"`
}

// Default returns the configuration used when no file is given. The
// durations mirror the cadence the simulator side expects.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			BaseURL: "http://localhost:9090",
			Timeout: 30 * time.Second,
		},
		Intervals: IntervalConfig{
			PublishSettle:     1 * time.Second,
			SettleDelay:       15 * time.Second,
			CooldownDelay:     3 * time.Second,
			MonitorPoll:       2 * time.Second,
			EngagePoll:        1 * time.Second,
			RetryBackoff:      1 * time.Second,
			AvailabilityProbe: 5 * time.Second,
		},
		Retry: RetryConfig{
			LocalizationAttempts: 10,
			NPCRemovalAttempts:   10,
		},
		Scenario: ScenarioConfig{
			FileExtension: ".script",
		},
	}
}

// Load reads and parses the configuration file, applying defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate ensures configuration is valid.
func (c *Config) Validate() error {
	if c.Bridge.BaseURL == "" {
		return fmt.Errorf("bridge baseUrl is required")
	}

	if c.Bridge.Timeout <= 0 {
		return fmt.Errorf("bridge timeout must be positive")
	}

	if c.Retry.LocalizationAttempts <= 0 {
		return fmt.Errorf("localizationAttempts must be positive")
	}

	if c.Retry.NPCRemovalAttempts <= 0 {
		return fmt.Errorf("npcRemovalAttempts must be positive")
	}

	intervals := map[string]time.Duration{
		"publishSettle":     c.Intervals.PublishSettle,
		"settleDelay":       c.Intervals.SettleDelay,
		"cooldownDelay":     c.Intervals.CooldownDelay,
		"monitorPoll":       c.Intervals.MonitorPoll,
		"engagePoll":        c.Intervals.EngagePoll,
		"retryBackoff":      c.Intervals.RetryBackoff,
		"availabilityProbe": c.Intervals.AvailabilityProbe,
	}
	for name, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("interval %s must be positive", name)
		}
	}

	if c.Scenario.FileExtension == "" {
		return fmt.Errorf("scenario fileExtension is required")
	}

	return nil
}
