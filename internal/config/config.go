// Package config provides configuration management for the reclamebot
// application.
//
// Configuration is loaded from environment variables with an optional .env
// file as fallback. Required settings are validated at startup; the caller
// decides whether a validation failure is fatal (the web dashboard stays
// reachable even when the bot cannot run).
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. .env file in the working directory
//  3. Hard-coded defaults
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Check-interval bounds, in minutes. Values outside this range are rejected
// both at startup and when saved from the dashboard config form.
const (
	MinCheckInterval = 5
	MaxCheckInterval = 1440
)

// DefaultSystemPrompt is used when SYSTEM_PROMPT is not configured. It steers
// the generative service toward a cordial, resolutive support reply.
const DefaultSystemPrompt = "You are a professional customer-service agent. " +
	"Reply to the complaint in a cordial, resolutive and empathetic tone. " +
	"Use formal but friendly language. Apologize for the inconvenience, " +
	"acknowledge the problem and offer practical solutions. Close by thanking " +
	"the customer for the opportunity to resolve the situation. " +
	"Limit the reply to 500 characters."

// Config holds all application configuration.
//
// The struct is immutable after creation; the dashboard's config form builds
// a new Config, validates it and persists it to .env, and the bot picks the
// values up on the next cycle.
type Config struct {
	// Portal URLs
	PortalBaseURL string // Base URL of the complaint portal

	// Authentication credentials (required for cycles to run)
	Email    string // Portal login email
	Password string // Portal login password

	// Generative response service
	OpenAIAPIKey string // API key for the response service (required for cycles)
	OpenAIModel  string // Chat model identifier
	SystemPrompt string // Prompt template steering reply tone

	// Scheduling
	CheckIntervalMinutes int // How often to run a processing cycle (5-1440)

	// Browser engine
	Browser  string // "chrome" or "chromium"
	Headless bool   // Run the browser without a visible window

	// Retry configuration for the login step
	MaxLoginRetries int
	LoginRetryDelay time.Duration

	// Timing configuration for remote-navigation waits
	NavigationTimeout time.Duration // Maximum time for page navigation
	WaitTimeout       time.Duration // Maximum time to wait for elements

	// Anti-automation pacing. Both collapse to zero in tests.
	TypeDelay time.Duration // Inter-keystroke delay while entering a reply
	ItemDelay time.Duration // Pause between complaints within a cycle

	// Persistence and export
	DBPath      string // SQLite database file
	ExportPath  string // JSON export destination
	ExportLimit int    // Maximum records per export

	// Web dashboard
	HTTPPort string // Port for the dashboard / API server
}

// Load reads configuration from the environment with .env fallback.
//
// A missing .env file is not an error; environment variables alone are fine.
// Returns a validation error when required fields are missing or values are
// out of range.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading from environment variables")
	}

	cfg := &Config{
		PortalBaseURL: getEnvOrDefault("PORTAL_BASE_URL", "https://www.reclameaqui.com.br"),

		Email:    os.Getenv("RECLAMEAQUI_EMAIL"),
		Password: os.Getenv("RECLAMEAQUI_PASSWORD"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		SystemPrompt: getEnvOrDefault("SYSTEM_PROMPT", DefaultSystemPrompt),

		CheckIntervalMinutes: getEnvInt("CHECK_INTERVAL_MINUTES", 60),

		Browser:  getEnvOrDefault("BROWSER_TYPE", "chrome"),
		Headless: getEnvOrDefault("BROWSER_HEADLESS", "true") == "true",

		MaxLoginRetries: getEnvInt("MAX_LOGIN_RETRIES", 3),
		LoginRetryDelay: getEnvDuration("LOGIN_RETRY_DELAY", 5*time.Second),

		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 60*time.Second),
		WaitTimeout:       getEnvDuration("WAIT_TIMEOUT", 15*time.Second),

		TypeDelay: getEnvDuration("TYPE_DELAY", 10*time.Millisecond),
		ItemDelay: getEnvDuration("ITEM_DELAY", 2*time.Second),

		DBPath:      getEnvOrDefault("DB_PATH", "reclameaqui_data.db"),
		ExportPath:  getEnvOrDefault("EXPORT_PATH", "complaints_export.json"),
		ExportLimit: getEnvInt("EXPORT_LIMIT", 1000),

		HTTPPort: getEnvOrDefault("HTTP_PORT", "5000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that values are sensible. Credential presence is checked
// separately via HasCredentials so the dashboard can start without them.
func (c *Config) Validate() error {
	if c.PortalBaseURL == "" {
		return fmt.Errorf("PORTAL_BASE_URL cannot be empty")
	}
	if c.CheckIntervalMinutes < MinCheckInterval || c.CheckIntervalMinutes > MaxCheckInterval {
		return fmt.Errorf("CHECK_INTERVAL_MINUTES must be between %d and %d, got %d",
			MinCheckInterval, MaxCheckInterval, c.CheckIntervalMinutes)
	}
	if c.Browser != "chrome" && c.Browser != "chromium" {
		return fmt.Errorf("BROWSER_TYPE must be 'chrome' or 'chromium', got %q", c.Browser)
	}
	if c.MaxLoginRetries < 1 {
		return fmt.Errorf("MAX_LOGIN_RETRIES must be at least 1, got %d", c.MaxLoginRetries)
	}
	if c.ExportLimit < 1 {
		return fmt.Errorf("EXPORT_LIMIT must be at least 1, got %d", c.ExportLimit)
	}
	return nil
}

// HasCredentials reports whether the settings required to run a processing
// cycle are present. When false, cycles fail fast at the login step but the
// dashboard remains usable.
func (c *Config) HasCredentials() bool {
	return c.Email != "" && c.Password != "" && c.OpenAIAPIKey != ""
}

// CheckInterval returns the scheduling period as a duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMinutes) * time.Minute
}

// SaveToFile persists the editable settings to the .env file so they survive
// restarts. Settings take effect on the next cycle.
func (c *Config) SaveToFile(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	env := map[string]string{
		"RECLAMEAQUI_EMAIL":      c.Email,
		"RECLAMEAQUI_PASSWORD":   c.Password,
		"OPENAI_API_KEY":         c.OpenAIAPIKey,
		"OPENAI_MODEL":           c.OpenAIModel,
		"SYSTEM_PROMPT":          c.SystemPrompt,
		"CHECK_INTERVAL_MINUTES": strconv.Itoa(c.CheckIntervalMinutes),
		"BROWSER_TYPE":           c.Browser,
	}

	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default
// if not set/invalid. Accepts standard Go duration strings like "5s" or "10m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
