package config

import (
	"fmt"
	"sync"
	"time"
)

// Dynamic holds the live configuration behind a lock so the dashboard can
// edit the runtime-tunable fields while the scheduler and orchestrator keep
// reading them. Edits take effect on the next processing cycle; the session
// in a running cycle keeps the values it started with.
type Dynamic struct {
	mu  sync.RWMutex
	cfg Config
}

func NewDynamic(cfg *Config) *Dynamic {
	return &Dynamic{cfg: *cfg}
}

// Snapshot returns a copy of the current configuration.
func (d *Dynamic) Snapshot() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// SystemPrompt returns the prompt the next generated reply will use.
func (d *Dynamic) SystemPrompt() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.SystemPrompt
}

// SetSystemPrompt replaces the reply prompt. An empty prompt restores the
// default.
func (d *Dynamic) SetSystemPrompt(prompt string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	d.cfg.SystemPrompt = prompt
}

// CheckInterval returns the current scheduling period.
func (d *Dynamic) CheckInterval() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.CheckInterval()
}

// UpdateSettings validates and applies the dashboard-editable settings.
// Nothing is changed when validation fails.
func (d *Dynamic) UpdateSettings(intervalMinutes int, browser string, headless bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.cfg
	next.CheckIntervalMinutes = intervalMinutes
	next.Browser = browser
	next.Headless = headless
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	d.cfg = next
	return nil
}

// Persist writes the current configuration to the .env file at path.
func (d *Dynamic) Persist(path string) error {
	snap := d.Snapshot()
	return snap.SaveToFile(path)
}
