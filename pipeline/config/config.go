// Package config loads the pipeline settings file and turns it into a wired
// worker pool and pacing policy.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/travaso/pipeline/core"
	"github.com/spaghettifunk/travaso/pipeline/datauri"
	"github.com/spaghettifunk/travaso/pipeline/jobs"
	"github.com/spaghettifunk/travaso/pipeline/pacing"
	"github.com/spaghettifunk/travaso/pipeline/transcode"
)

type Settings struct {
	LogLevel string `toml:"log_level"`

	// Policy selects the pacing strategy: "budgeted" holds inline work to
	// the per-tick allowance, "uninterrupted" never suspends.
	Policy       string  `toml:"policy"`
	TickBudgetMS float64 `toml:"tick_budget_ms"`
	TickRateHz   int     `toml:"tick_rate_hz"`

	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
	Grain     int `toml:"grain"`

	// EditorRates switches the data-URI decode prediction to the slower
	// editor-process throughput constant.
	EditorRates bool `toml:"editor_rates"`
}

func Defaults() Settings {
	return Settings{
		LogLevel:     "info",
		Policy:       "uninterrupted",
		TickBudgetMS: 2,
		TickRateHz:   60,
		Workers:      runtime.NumCPU(),
		QueueSize:    64,
		Grain:        transcode.DefaultGrain,
	}
}

// Load reads settings from path, overlaying the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := toml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}

	return s, nil
}

func (s Settings) Validate() error {
	switch s.Policy {
	case "budgeted", "uninterrupted":
	default:
		return fmt.Errorf("%w: unknown policy %q", core.ErrInvalidConfig, s.Policy)
	}
	if s.TickBudgetMS < 0 {
		return fmt.Errorf("%w: negative tick budget", core.ErrInvalidConfig)
	}
	if s.TickRateHz <= 0 {
		return fmt.Errorf("%w: tick rate must be positive", core.ErrInvalidConfig)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", core.ErrInvalidConfig)
	}
	if s.QueueSize < 0 {
		return fmt.Errorf("%w: negative queue size", core.ErrInvalidConfig)
	}
	if s.Grain <= 0 {
		return fmt.Errorf("%w: grain must be positive", core.ErrInvalidConfig)
	}
	return nil
}

// DecodeRate returns the calibrated data-URI decode throughput for this
// execution context.
func (s Settings) DecodeRate() int64 {
	if s.EditorRates {
		return datauri.EditorDecodeRate
	}
	return datauri.ProductionDecodeRate
}

// TickInterval is the host tick period driving a budgeted agent.
func (s Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRateHz)
}

// Apply builds the worker pool and pacing agent the settings describe and
// installs the agent as the process default. The caller owns the returned
// pool and must Shutdown it.
func (s Settings) Apply() (*jobs.Pool, pacing.Agent, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	core.SetLogLevel(s.LogLevel)

	pool, err := jobs.NewPool(s.Workers, s.QueueSize)
	if err != nil {
		return nil, nil, err
	}

	var agent pacing.Agent
	switch s.Policy {
	case "budgeted":
		agent = pacing.NewBudgetedAgent(time.Duration(s.TickBudgetMS*float64(time.Millisecond)), pool)
	default:
		agent = pacing.NewUninterruptedAgent(pool)
	}

	pacing.SetDefault(agent)

	return pool, agent, nil
}
