// Package config loads the daemon configuration from a YAML file, with
// defaults applied for anything left unset.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crest-wm/crest-go/pkg/transport"
)

// Config is the daemon configuration.
type Config struct {
	// SocketPath is the control socket to listen on.
	SocketPath string `yaml:"socket_path"`

	// MaxMessageSize caps a single framed message, in bytes.
	MaxMessageSize uint32 `yaml:"max_message_size"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures protocol logging.
type LogConfig struct {
	// File is the CBOR protocol log path. Empty disables file logging.
	File string `yaml:"file"`

	// Console enables human-readable console logging.
	Console bool `yaml:"console"`

	// Level is the console log level: debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given. The
// socket path honors the CREST_SOCKET environment variable.
func Default() Config {
	return Config{
		SocketPath:     transport.SocketPath(),
		MaxMessageSize: transport.DefaultMaxMessageSize,
		Log: LogConfig{
			Console: true,
			Level:   "info",
		},
	}
}

// Load reads a YAML configuration file and overlays it on the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if c.MaxMessageSize < transport.LengthPrefixSize {
		return fmt.Errorf("max_message_size %d is too small", c.MaxMessageSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
