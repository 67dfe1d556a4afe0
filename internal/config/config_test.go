package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestLoad(t *testing.T) {
	t.Setenv("RECLAMEAQUI_EMAIL", "bot@example.com")
	t.Setenv("RECLAMEAQUI_PASSWORD", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.Email != "bot@example.com" {
		t.Errorf("expected email 'bot@example.com' but got %q", cfg.Email)
	}

	if !cfg.HasCredentials() {
		t.Error("expected HasCredentials to be true")
	}

	// Defaults
	if cfg.CheckIntervalMinutes != 60 {
		t.Errorf("expected default CheckIntervalMinutes=60 but got %d", cfg.CheckIntervalMinutes)
	}
	if cfg.Browser != "chrome" {
		t.Errorf("expected default browser 'chrome' but got %q", cfg.Browser)
	}
	if cfg.MaxLoginRetries != 3 {
		t.Errorf("expected default MaxLoginRetries=3 but got %d", cfg.MaxLoginRetries)
	}
	if cfg.CheckInterval() != 60*time.Minute {
		t.Errorf("expected CheckInterval=60m but got %v", cfg.CheckInterval())
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("RECLAMEAQUI_EMAIL", "")
	t.Setenv("RECLAMEAQUI_PASSWORD", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing credentials must not fail Load: %v", err)
	}

	if cfg.HasCredentials() {
		t.Error("expected HasCredentials to be false")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PortalBaseURL:        "https://portal.example.com",
			CheckIntervalMinutes: 60,
			Browser:              "chrome",
			MaxLoginRetries:      3,
			ExportLimit:          1000,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "interval below minimum",
			mutate:    func(c *Config) { c.CheckIntervalMinutes = 4 },
			expectErr: true,
		},
		{
			name:      "interval above maximum",
			mutate:    func(c *Config) { c.CheckIntervalMinutes = 1441 },
			expectErr: true,
		},
		{
			name:      "interval at lower bound",
			mutate:    func(c *Config) { c.CheckIntervalMinutes = 5 },
			expectErr: false,
		},
		{
			name:      "interval at upper bound",
			mutate:    func(c *Config) { c.CheckIntervalMinutes = 1440 },
			expectErr: false,
		},
		{
			name:      "unsupported browser",
			mutate:    func(c *Config) { c.Browser = "firefox" },
			expectErr: true,
		},
		{
			name:      "chromium browser",
			mutate:    func(c *Config) { c.Browser = "chromium" },
			expectErr: false,
		},
		{
			name:      "empty portal URL",
			mutate:    func(c *Config) { c.PortalBaseURL = "" },
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	cfg := &Config{
		PortalBaseURL:        "https://portal.example.com",
		Email:                "bot@example.com",
		Password:             "secret",
		OpenAIAPIKey:         "sk-test",
		OpenAIModel:          "gpt-4o",
		SystemPrompt:         "Be kind.",
		CheckIntervalMinutes: 30,
		Browser:              "chrome",
		MaxLoginRetries:      3,
		ExportLimit:          1000,
	}

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading saved env file: %v", err)
	}

	if env["RECLAMEAQUI_EMAIL"] != "bot@example.com" {
		t.Errorf("expected saved email 'bot@example.com' but got %q", env["RECLAMEAQUI_EMAIL"])
	}
	if env["CHECK_INTERVAL_MINUTES"] != "30" {
		t.Errorf("expected saved interval '30' but got %q", env["CHECK_INTERVAL_MINUTES"])
	}
	if env["SYSTEM_PROMPT"] != "Be kind." {
		t.Errorf("expected saved prompt 'Be kind.' but got %q", env["SYSTEM_PROMPT"])
	}
}

func TestSaveToFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	cfg := &Config{
		PortalBaseURL:        "https://portal.example.com",
		CheckIntervalMinutes: 2, // out of range
		Browser:              "chrome",
		MaxLoginRetries:      3,
		ExportLimit:          1000,
	}

	if err := cfg.SaveToFile(path); err == nil {
		t.Fatal("expected validation error but got nil")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be written for invalid config")
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "env var set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env var not set",
			key:          "NONEXISTENT_VAR",
			defaultValue: "default",
			envValue:     "",
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnvOrDefault(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, result)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		expected     int
	}{
		{
			name:         "valid int",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "25",
			expected:     25,
		},
		{
			name:         "invalid int uses default",
			key:          "TEST_INT_INVALID",
			defaultValue: 10,
			envValue:     "notanumber",
			expected:     10,
		},
		{
			name:         "empty uses default",
			key:          "TEST_INT_EMPTY",
			defaultValue: 10,
			envValue:     "",
			expected:     10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnvInt(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("expected %d but got %d", tt.expected, result)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")

	if got := getEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("expected 90s but got %v", got)
	}

	if got := getEnvDuration("TEST_DURATION_MISSING", 7*time.Second); got != 7*time.Second {
		t.Errorf("expected default 7s but got %v", got)
	}
}
