package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing credentials")
	}

	cfg.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing chat id")
	}

	cfg.Telegram.ChatID = -100123
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
telegram:
  token: from-file
  chat_id: 42
feeds:
  list_file: /data/feeds.txt
  include_description: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "-100555")
	t.Setenv("CHECK_INTERVAL", "120")
	t.Setenv("DISABLE_NOTIFICATION", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("env must win over file, got token %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.ChatID != -100555 {
		t.Fatalf("ChatID = %d", cfg.Telegram.ChatID)
	}
	if !cfg.Telegram.DisableNotification {
		t.Fatal("DISABLE_NOTIFICATION=true not applied")
	}
	// File values without env overrides survive.
	if cfg.Feeds.ListFile != "/data/feeds.txt" {
		t.Fatalf("ListFile = %q", cfg.Feeds.ListFile)
	}
	if !cfg.Feeds.IncludeDescription {
		t.Fatal("include_description from file not applied")
	}

	d, err := cfg.CheckInterval()
	if err != nil {
		t.Fatalf("CheckInterval: %v", err)
	}
	if d != 2*time.Minute {
		t.Fatalf("CheckInterval = %v, want 2m", d)
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("a named but missing config file must be an error")
	}
}

func TestCheckIntervalParsing(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{name: "default", raw: "", want: time.Hour},
		{name: "seconds", raw: "90", want: 90 * time.Second},
		{name: "zero means default", raw: "0", want: time.Hour},
		{name: "duration string", raw: "45m", want: 45 * time.Minute},
		{name: "negative", raw: "-5", wantErr: true},
		{name: "garbage", raw: "soon", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Feeds.CheckInterval = tt.raw
			got, err := cfg.CheckInterval()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckInterval(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("CheckInterval(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", " yes ", "1", "on"} {
		if !parseBool(v) {
			t.Fatalf("parseBool(%q) = false", v)
		}
	}
	for _, v := range []string{"", "false", "0", "off", "maybe"} {
		if parseBool(v) {
			t.Fatalf("parseBool(%q) = true", v)
		}
	}
}
