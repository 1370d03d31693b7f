package app

import (
	"testing"
)

// TestLoadConfig verifies basic config loading and defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config == nil {
		t.Fatal("LoadConfig() returned nil config")
	}

	if config.DataDir == "" {
		t.Error("DataDir not set to default")
	}
	if config.Store != "memory" && config.Store != "redis" {
		t.Errorf("Store = %q, want memory or redis", config.Store)
	}
	if config.RedisHost == "" || config.RedisPort == 0 {
		t.Error("Redis defaults not set")
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_UpdateFromFlags verifies flag values take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Output: "table", LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "json", "debug")

	if !config.Verbose {
		t.Error("Verbose flag not applied")
	}
	if !config.NoColor {
		t.Error("NoColor flag not applied")
	}
	if config.Output != "json" {
		t.Errorf("Output = %q, want %q", config.Output, "json")
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", config.LogLevel, "debug")
	}

	// Empty flag values leave the previous settings alone
	config.UpdateFromFlags(true, false, true, "", "")
	if config.Output != "json" || config.LogLevel != "debug" {
		t.Error("empty flag values should not reset config")
	}
}
