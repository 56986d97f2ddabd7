package config

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewAppConfigDefaults(t *testing.T) {
	t.Setenv("REVERIE_BACKEND_URL", "")
	t.Setenv("REVERIE_API_TOKEN", "")
	t.Setenv("REVERIE_PLAYER_SOCKET", "")
	t.Setenv("REVERIE_APP_NAME", "")

	cfg := NewAppConfig(zap.NewNop())

	if got := cfg.AppName(); got != "reverie" {
		t.Errorf("AppName() = %q, want %q", got, "reverie")
	}
	if got := cfg.PlayerSocket(); got != "/tmp/reverie-mpv.sock" {
		t.Errorf("PlayerSocket() = %q, want %q", got, "/tmp/reverie-mpv.sock")
	}
	if got := cfg.BackendURL(); got != "" {
		t.Errorf("BackendURL() = %q, want empty", got)
	}
	if got := cfg.APIToken(); got != "" {
		t.Errorf("APIToken() = %q, want empty", got)
	}
}

func TestNewAppConfigFromEnvironment(t *testing.T) {
	t.Setenv("REVERIE_BACKEND_URL", "http://media.local:8096")
	t.Setenv("REVERIE_API_TOKEN", "secret-token")
	t.Setenv("REVERIE_PLAYER_SOCKET", "/run/user/1000/mpv.sock")
	t.Setenv("REVERIE_APP_NAME", "reverie-dev")

	cfg := NewAppConfig(zap.NewNop())

	if got := cfg.BackendURL(); got != "http://media.local:8096" {
		t.Errorf("BackendURL() = %q, want %q", got, "http://media.local:8096")
	}
	if got := cfg.APIToken(); got != "secret-token" {
		t.Errorf("APIToken() = %q, want %q", got, "secret-token")
	}
	if got := cfg.PlayerSocket(); got != "/run/user/1000/mpv.sock" {
		t.Errorf("PlayerSocket() = %q, want %q", got, "/run/user/1000/mpv.sock")
	}
	if got := cfg.AppName(); got != "reverie-dev" {
		t.Errorf("AppName() = %q, want %q", got, "reverie-dev")
	}
}
