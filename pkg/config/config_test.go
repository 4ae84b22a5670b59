package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crest-wm/crest-go/pkg/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv(transport.SocketEnv, "/tmp/crest-test.socket")

	cfg := Default()
	if cfg.SocketPath != "/tmp/crest-test.socket" {
		t.Errorf("SocketPath = %s", cfg.SocketPath)
	}
	if cfg.MaxMessageSize != transport.DefaultMaxMessageSize {
		t.Errorf("MaxMessageSize = %d", cfg.MaxMessageSize)
	}
	if !cfg.Log.Console || cfg.Log.Level != "info" || cfg.Log.File != "" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
socket_path: /run/crest/control.socket
log:
  file: /var/log/crest.clog
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SocketPath != "/run/crest/control.socket" {
		t.Errorf("SocketPath = %s", cfg.SocketPath)
	}
	// Unset keys keep their defaults.
	if cfg.MaxMessageSize != transport.DefaultMaxMessageSize {
		t.Errorf("MaxMessageSize = %d", cfg.MaxMessageSize)
	}
	if cfg.Log.File != "/var/log/crest.clog" || cfg.Log.Level != "debug" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "sokcet_path: /tmp/x.socket\n")
	if _, err := Load(path); err == nil {
		t.Error("misspelled key accepted")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty socket", `socket_path: ""`, "socket_path"},
		{"tiny max size", "max_message_size: 2", "max_message_size"},
		{"bad level", "log:\n  level: verbose", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
