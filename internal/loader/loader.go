// Package loader handles configuration file loading and validation for the
// qosmon binaries.
//
// This package is responsible for:
//   - Loading the YAML configuration file
//   - Expanding environment variables inside it
//   - Merging file values over built-in defaults
//   - Validating the merged result
//
// CLI flags override file values in main; the bind path additionally honors
// the QOS_SOCK environment variable (see the config package).
package loader

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/qosmon/config"
	"github.com/xtxerr/qosmon/internal/errors"
	"github.com/xtxerr/qosmon/internal/logging"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the complete configuration shared by qosmond and qosprobe.
type Config struct {
	// Socket configures the telemetry socket.
	Socket SocketConfig `yaml:"socket"`

	// Display configures the display daemon.
	Display DisplayConfig `yaml:"display"`

	// Probe configures the producer.
	Probe ProbeConfig `yaml:"probe"`

	// Log configures logging for both binaries.
	Log LogConfig `yaml:"log"`
}

// SocketConfig configures the telemetry socket.
type SocketConfig struct {
	// Path is the datagram socket path. Empty selects the QOS_SOCK
	// environment variable, then the per-user runtime directory.
	Path string `yaml:"path"`

	// ReceiveBuffer is the receive buffer size in bytes. Oversized garbage
	// datagrams up to this size are drained whole instead of left queued.
	ReceiveBuffer int `yaml:"receive_buffer"`
}

// DisplayConfig configures the display daemon.
type DisplayConfig struct {
	// PollIntervalMs is the sampler poll cadence in milliseconds.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// ProbeConfig configures the producer.
type ProbeConfig struct {
	// Interface is the WiFi interface to read station statistics from.
	// Usually given as the positional argument instead.
	Interface string `yaml:"interface"`

	// Peer is the peer station MAC address. Empty uses the associated
	// access point's BSSID.
	Peer string `yaml:"peer"`

	// IntervalMs is the heartbeat interval in milliseconds. Zero emits a
	// single reading and exits.
	IntervalMs int `yaml:"interval_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// JSON switches log output to JSON.
	JSON bool `yaml:"json"`
}

// =============================================================================
// Load
// =============================================================================

// Load loads configuration from a YAML file, merging it over defaults.
// A missing file surfaces as an error satisfying errors.Is(err,
// os.ErrNotExist); callers fall back to DefaultConfig for it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Socket: SocketConfig{
			Path:          "", // resolved via config.SocketPath at startup
			ReceiveBuffer: config.DefaultReceiveBufferSize,
		},
		Display: DisplayConfig{
			PollIntervalMs: int(config.DefaultPollInterval.Milliseconds()),
		},
		Probe: ProbeConfig{
			IntervalMs: int(config.DefaultProbeInterval.Milliseconds()),
		},
		Log: LogConfig{
			Level: config.DefaultLogLevel,
		},
	}
}

// =============================================================================
// Validate
// =============================================================================

// Validate validates the configuration. Mains call it again after applying
// flag overrides.
func Validate(cfg *Config) error {
	errs := errors.NewValidationErrors()

	if cfg.Socket.ReceiveBuffer < config.DefaultReceiveBufferSize {
		errs.AddField("socket.receive_buffer",
			fmt.Sprintf("must be at least %d bytes", config.DefaultReceiveBufferSize))
	}

	if cfg.Display.PollIntervalMs <= 0 {
		errs.AddField("display.poll_interval_ms", "must be positive")
	}

	if cfg.Probe.IntervalMs < 0 {
		errs.AddField("probe.interval_ms", "cannot be negative")
	}

	if cfg.Probe.Peer != "" {
		if _, err := net.ParseMAC(cfg.Probe.Peer); err != nil {
			errs.AddField("probe.peer", fmt.Sprintf("bad MAC %q", cfg.Probe.Peer))
		}
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs.AddField("log.level", err.Error())
	}

	return errs.Err()
}
