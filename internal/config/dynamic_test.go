package config

import (
	"strings"
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		PortalBaseURL:        "https://portal.example.com",
		CheckIntervalMinutes: 60,
		Browser:              "chrome",
		MaxLoginRetries:      3,
		ExportLimit:          100,
		SystemPrompt:         DefaultSystemPrompt,
	}
}

func TestDynamicUpdateSettings(t *testing.T) {
	d := NewDynamic(baseConfig())

	if err := d.UpdateSettings(30, "chromium", false); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}
	snap := d.Snapshot()
	if snap.CheckIntervalMinutes != 30 || snap.Browser != "chromium" || snap.Headless {
		t.Errorf("settings not applied: %+v", snap)
	}
	if d.CheckInterval() != 30*time.Minute {
		t.Errorf("CheckInterval = %v, want 30m", d.CheckInterval())
	}
}

func TestDynamicRejectsInvalidUpdate(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		browser  string
	}{
		{"interval below minimum", 4, "chrome"},
		{"interval above maximum", 1441, "chrome"},
		{"unsupported browser", 60, "firefox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDynamic(baseConfig())
			if err := d.UpdateSettings(tt.interval, tt.browser, true); err == nil {
				t.Fatal("invalid update accepted")
			}
			snap := d.Snapshot()
			if snap.CheckIntervalMinutes != 60 || snap.Browser != "chrome" {
				t.Errorf("failed update must not change settings: %+v", snap)
			}
		})
	}
}

func TestDynamicPromptRoundTrip(t *testing.T) {
	d := NewDynamic(baseConfig())

	d.SetSystemPrompt("Reply briefly.")
	if got := d.SystemPrompt(); got != "Reply briefly." {
		t.Errorf("SystemPrompt = %q", got)
	}

	d.SetSystemPrompt("")
	if got := d.SystemPrompt(); !strings.Contains(got, "customer-service") {
		t.Errorf("empty prompt should restore the default, got %q", got)
	}
}
