/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings are layered: built-in defaults, then an optional YAML file, then environment variables
(a local .env file is loaded into the environment first without overriding real variables).
Command-line flags are applied on top by the caller.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"roomchat/internal/pkg/naming"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	WSPath      string `yaml:"ws_path"`
	DefaultRoom string `yaml:"default_room"`
	LogLevel    string `yaml:"log_level"`

	// Security Settings
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Protocol Settings
	Envelope          string        `yaml:"envelope"`
	SubscriberBuffer  int           `yaml:"subscriber_buffer"`
	MaxMessageBytes   int64         `yaml:"max_message_bytes"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	PongWait          time.Duration `yaml:"pong_wait"`
	WriteWait         time.Duration `yaml:"write_wait"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`

	// Rate Limit Settings
	MessageRate          float64 `yaml:"message_rate"`
	MessageBurst         int     `yaml:"message_burst"`
	ConnectRate          float64 `yaml:"connect_rate"`
	ConnectBurst         int     `yaml:"connect_burst"`
	APIRequestsPerMinute int     `yaml:"api_requests_per_minute"`

	// Lifecycle Settings
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Environment:          "development",
		Host:                 "0.0.0.0",
		Port:                 6142,
		WSPath:               "/ws",
		DefaultRoom:          "main",
		LogLevel:             "info",
		AllowedOrigins:       []string{},
		Envelope:             "json",
		SubscriberBuffer:     32,
		MaxMessageBytes:      8192,
		HeartbeatInterval:    15 * time.Second,
		PongWait:             60 * time.Second,
		WriteWait:            10 * time.Second,
		IdleTimeout:          0,
		MessageRate:          10,
		MessageBurst:         20,
		ConnectRate:          1,
		ConnectBurst:         5,
		APIRequestsPerMinute: 60,
		ShutdownTimeout:      10 * time.Second,
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path (or CONFIG_FILE
// when path is empty), and environment variables, then validates it.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays the settings present in a YAML file.
func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays the settings present in environment variables.
func (c *AppConfig) loadEnv() error {
	// --- General Server Settings ---
	envString("ENVIRONMENT", &c.Environment)
	envString("HOST", &c.Host)
	envString("WS_PATH", &c.WSPath)
	envString("DEFAULT_ROOM", &c.DefaultRoom)
	envString("LOG_LEVEL", &c.LogLevel)

	if err := envInt("PORT", &c.Port); err != nil {
		return err
	}

	// --- Security Settings ---
	if originsStr, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(originsStr)
	}

	// --- Protocol Settings ---
	envString("ENVELOPE", &c.Envelope)

	if err := envInt("SUBSCRIBER_BUFFER", &c.SubscriberBuffer); err != nil {
		return err
	}

	if raw := os.Getenv("MAX_MESSAGE_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_MESSAGE_BYTES environment variable: %w", err)
		}
		c.MaxMessageBytes = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HEARTBEAT_INTERVAL", &c.HeartbeatInterval},
		{"PONG_WAIT", &c.PongWait},
		{"WRITE_WAIT", &c.WriteWait},
		{"IDLE_TIMEOUT", &c.IdleTimeout},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if err := envDuration(d.key, d.dst); err != nil {
			return err
		}
	}

	// --- Rate Limit Settings ---
	if err := envFloat("MESSAGE_RATE", &c.MessageRate); err != nil {
		return err
	}
	if err := envInt("MESSAGE_BURST", &c.MessageBurst); err != nil {
		return err
	}
	if err := envFloat("CONNECT_RATE", &c.ConnectRate); err != nil {
		return err
	}
	if err := envInt("CONNECT_BURST", &c.ConnectBurst); err != nil {
		return err
	}
	if err := envInt("API_REQUESTS_PER_MINUTE", &c.APIRequestsPerMinute); err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *AppConfig) Validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	if !strings.HasPrefix(c.WSPath, "/") {
		return fmt.Errorf("ws_path %q must start with /", c.WSPath)
	}

	if !naming.ValidRoomName(c.DefaultRoom) {
		return fmt.Errorf("default_room %q must be 1-%d characters without surrounding whitespace or control characters", c.DefaultRoom, naming.MaxRoomNameLength)
	}

	if c.Envelope != "json" && c.Envelope != "text" {
		return fmt.Errorf("envelope must be \"json\" or \"text\", got %q", c.Envelope)
	}

	if c.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber_buffer must be at least 1, got %d", c.SubscriberBuffer)
	}

	if c.MaxMessageBytes < 1 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes)
	}

	if c.HeartbeatInterval <= 0 || c.WriteWait <= 0 {
		return fmt.Errorf("heartbeat_interval and write_wait must be positive")
	}

	if c.PongWait <= c.HeartbeatInterval {
		return fmt.Errorf("pong_wait (%s) must be longer than heartbeat_interval (%s)", c.PongWait, c.HeartbeatInterval)
	}

	if c.IdleTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("idle_timeout and shutdown_timeout must not be negative")
	}

	if c.MessageRate < 0 || c.ConnectRate < 0 || c.MessageBurst < 0 || c.ConnectBurst < 0 || c.APIRequestsPerMinute < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr returns the host:port listen address.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
