package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  url: https://chat.example.com
  email: iago@example.com
  api_key: secret
  timeout: 3s
compose:
  to: hamlet@example.com
telegram:
  token: "123:abc"
frontend: telegram
allowlist:
  - 1001
  - 1002
prefs_file: "/tmp/prefs.yaml"
log_file: "/tmp/test.log"
debug: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.URL != "https://chat.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 3*time.Second {
		t.Errorf("Server.Timeout = %v, want 3s", cfg.Server.Timeout)
	}
	if cfg.Compose.To != "hamlet@example.com" {
		t.Errorf("Compose.To = %q", cfg.Compose.To)
	}
	if len(cfg.Allowlist) != 2 || cfg.Allowlist[0] != 1001 {
		t.Errorf("Allowlist = %v, want [1001 1002]", cfg.Allowlist)
	}
	if cfg.Frontend != FrontendTelegram {
		t.Errorf("Frontend = %q, want telegram", cfg.Frontend)
	}
	if cfg.LogFile != "/tmp/test.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/test.log")
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if err := cfg.ValidateClient(); err != nil {
		t.Errorf("ValidateClient() error = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  url: http://127.0.0.1:9991\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Frontend != FrontendConsole {
		t.Errorf("Frontend = %q, want console", cfg.Frontend)
	}
	if cfg.Server.Timeout != DefaultTimeout {
		t.Errorf("Server.Timeout = %v, want %v", cfg.Server.Timeout, DefaultTimeout)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
}

func TestValidateClient(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"console", "server:\n  url: http://x\n", false},
		{"missing url", "frontend: console\n", true},
		{"telegram without token", "server:\n  url: http://x\nfrontend: telegram\nallowlist: [1]\n", true},
		{"telegram empty allowlist", "server:\n  url: http://x\nfrontend: telegram\ntelegram:\n  token: t\nallowlist: []\n", true},
		{"unknown frontend", "server:\n  url: http://x\nfrontend: irc\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := cfg.ValidateClient(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should error on missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	if err == nil {
		t.Error("Load() should error on invalid yaml")
	}
}

func TestIsAllowed(t *testing.T) {
	cfg := &Config{
		Allowlist: []int64{1001, 1002},
	}

	tests := []struct {
		userID int64
		want   bool
	}{
		{1001, true},
		{1002, true},
		{1003, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := cfg.IsAllowed(tt.userID); got != tt.want {
			t.Errorf("IsAllowed(%d) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}
