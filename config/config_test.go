package config

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cfg := &Config{
		SessionStore:         " Redis ",
		MaxRetries:           0,
		LLMRequestTimeout:    20,
		RetryDelaySeconds:    1,
		LLMBackoffMaxSeconds: 8,
		SessionTTL:           24,
		DefaultModel:         " gpt-4o-mini ",
	}

	cfg.normalize()

	if cfg.SessionStore != "redis" {
		t.Errorf("SessionStore = %q, want redis", cfg.SessionStore)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("MaxRetries = %d, want 1", cfg.MaxRetries)
	}
	if cfg.LLMRequestTimeout != 20*time.Second {
		t.Errorf("LLMRequestTimeout = %v", cfg.LLMRequestTimeout)
	}
	if cfg.RetryDelaySeconds != time.Second || cfg.LLMBackoffMaxSeconds != 8*time.Second {
		t.Errorf("backoff = %v/%v", cfg.RetryDelaySeconds, cfg.LLMBackoffMaxSeconds)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.TenantCacheSize != 128 || cfg.SessionCacheSize != 10000 {
		t.Errorf("cache sizes = %d/%d", cfg.TenantCacheSize, cfg.SessionCacheSize)
	}
}

func TestNormalizeUnknownStoreFallsBackToMemory(t *testing.T) {
	cfg := &Config{SessionStore: "sqlite"}
	cfg.normalize()
	if cfg.SessionStore != "memory" {
		t.Errorf("SessionStore = %q, want memory", cfg.SessionStore)
	}
}
