package configs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory so no stray .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != 6142 || cfg.WSPath != "/ws" || cfg.DefaultRoom != "main" {
		t.Errorf("unexpected defaults: port=%d path=%q room=%q", cfg.Port, cfg.WSPath, cfg.DefaultRoom)
	}
	if cfg.HeartbeatInterval != 15*time.Second || cfg.SubscriberBuffer != 32 {
		t.Errorf("unexpected defaults: heartbeat=%s buffer=%d", cfg.HeartbeatInterval, cfg.SubscriberBuffer)
	}
	if cfg.Addr() != "0.0.0.0:6142" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "roomchat.yaml")
	writeFile(t, path, strings.Join([]string{
		"port: 7000",
		"default_room: lobby",
		"envelope: text",
		"heartbeat_interval: 5s",
		"pong_wait: 20s",
		"allowed_origins:",
		"  - https://a.example",
	}, "\n"))

	t.Setenv("PORT", "7100")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != 7100 {
		t.Errorf("Port = %d, want env value 7100", cfg.Port)
	}
	if cfg.DefaultRoom != "lobby" || cfg.Envelope != "text" {
		t.Errorf("file values not applied: room=%q envelope=%q", cfg.DefaultRoom, cfg.Envelope)
	}
	if cfg.HeartbeatInterval != 5*time.Second || cfg.PongWait != 20*time.Second {
		t.Errorf("durations = %s/%s, want 5s/20s", cfg.HeartbeatInterval, cfg.PongWait)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"https://a.example"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFileFromEnvironment(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "default_room: atrium\n")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultRoom != "atrium" {
		t.Errorf("DefaultRoom = %q, want atrium", cfg.DefaultRoom)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(dir, ".env"), "ROOMCHAT_TEST_ORIGINS=https://x.example, https://y.example\n")
	t.Setenv("ROOMCHAT_TEST_ORIGINS", "")
	os.Unsetenv("ROOMCHAT_TEST_ORIGINS")

	if _, err := LoadConfig(""); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got := os.Getenv("ROOMCHAT_TEST_ORIGINS"); got != "https://x.example, https://y.example" {
		t.Errorf(".env value not loaded, got %q", got)
	}
}

func TestLoadConfigDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(dir, ".env"), "DEFAULT_ROOM=from-dotenv\n")
	t.Setenv("DEFAULT_ROOM", "from-env")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultRoom != "from-env" {
		t.Errorf("DefaultRoom = %q, want from-env", cfg.DefaultRoom)
	}
}

func TestLoadConfigEnvParsing(t *testing.T) {
	isolate(t)

	t.Setenv("ALLOWED_ORIGINS", " https://a.example ,,https://b.example ")
	t.Setenv("IDLE_TIMEOUT", "90s")
	t.Setenv("MESSAGE_RATE", "2.5")
	t.Setenv("MAX_MESSAGE_BYTES", "1024")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !slices.Equal(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.IdleTimeout != 90*time.Second || cfg.MessageRate != 2.5 || cfg.MaxMessageBytes != 1024 {
		t.Errorf("got idle=%s rate=%v max=%d", cfg.IdleTimeout, cfg.MessageRate, cfg.MaxMessageBytes)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad port", "PORT", "http", "invalid PORT"},
		{"privileged port", "PORT", "80", "outside the recommended range"},
		{"bad duration", "PONG_WAIT", "soon", "invalid PONG_WAIT"},
		{"bad envelope", "ENVELOPE", "xml", "envelope must be"},
		{"zero buffer", "SUBSCRIBER_BUFFER", "0", "subscriber_buffer"},
		{"pong shorter than heartbeat", "PONG_WAIT", "1s", "pong_wait"},
		{"padded default room", "DEFAULT_ROOM", " lobby", "default_room"},
		{"control character in default room", "DEFAULT_ROOM", "lob\tby", "default_room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("LoadConfig error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	dir := isolate(t)

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestValidateDefaultRoomLength(t *testing.T) {
	cfg := Default()
	cfg.DefaultRoom = strings.Repeat("r", 65)
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "default_room") {
		t.Errorf("Validate() = %v, want a default_room error", err)
	}

	cfg.DefaultRoom = strings.Repeat("r", 64)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v for a 64-rune room", err)
	}
}
