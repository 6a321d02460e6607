package api

import (
	"testing"
	"time"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %q", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("Expected read timeout 10s, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("Expected write timeout 10s, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("Expected idle timeout 60s, got %v", cfg.IdleTimeout)
	}
	if cfg.JWT.Expiry != 24*time.Hour {
		t.Errorf("Expected JWT expiry 24h, got %v", cfg.JWT.Expiry)
	}
	if cfg.JWT.Secret != "" {
		t.Errorf("Expected no default JWT secret, got %q", cfg.JWT.Secret)
	}
}

func TestConfigApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Host:         "127.0.0.1",
		Port:         9090,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
		JWT: JWTConfig{
			Secret: "0123456789abcdef0123456789abcdef",
			Expiry: time.Hour,
		},
	}
	cfg.ApplyDefaults()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %q", cfg.Host)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("Expected read timeout 5s, got %v", cfg.ReadTimeout)
	}
	if cfg.JWT.Expiry != time.Hour {
		t.Errorf("Expected JWT expiry 1h, got %v", cfg.JWT.Expiry)
	}
}
