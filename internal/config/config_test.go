package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_PREFIX", "")
	t.Setenv("DEFAULT_PROFILE_ID", "")
	t.Setenv("AI_TIMEOUT", "")

	cfg := Load()

	if cfg.StorePrefix != "calm_app_" {
		t.Errorf("StorePrefix = %q, want %q", cfg.StorePrefix, "calm_app_")
	}
	if cfg.DefaultProfileID != "default" {
		t.Errorf("DefaultProfileID = %q, want %q", cfg.DefaultProfileID, "default")
	}
	if cfg.AITimeout != 30*time.Second {
		t.Errorf("AITimeout = %v, want 30s", cfg.AITimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEBUG", "true")
	t.Setenv("CAREGIVER_TOKEN_TTL", "5m")

	cfg := Load()

	if cfg.StoreBackend != "redis" {
		t.Errorf("StoreBackend = %q, want redis", cfg.StoreBackend)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.CaregiverTokenTTL != 5*time.Minute {
		t.Errorf("CaregiverTokenTTL = %v, want 5m", cfg.CaregiverTokenTTL)
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset", value: "", want: 7},
		{name: "valid", value: "12", want: 12},
		{name: "invalid", value: "twelve", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT_VALUE", tt.value)
			if got := getEnvInt("TEST_INT_VALUE", 7); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}
