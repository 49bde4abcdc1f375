// Package config provides configuration defaults and utilities
// for the qosmon tools.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via qosmon.yaml, environment variables,
// or command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// Socket Defaults
// =============================================================================

const (
	// SocketEnvVar is the environment variable that overrides the socket path.
	// The name is shared with the original C publisher so existing producers
	// keep working against this daemon.
	SocketEnvVar = "QOS_SOCK"

	// DefaultSocketName is the socket file name used when no path is given.
	// The file is placed in the per-user runtime directory.
	DefaultSocketName = "qosmon.sock"

	// DefaultReceiveBufferSize is the receive buffer for a single datagram.
	// Larger than any valid record (24 bytes) so oversized garbage is drained
	// in one read instead of lingering in the socket queue.
	// Override via config: socket.receive_buffer
	DefaultReceiveBufferSize = 1024
)

// =============================================================================
// Sampler Defaults
// =============================================================================

const (
	// DefaultPollInterval is how often the display daemon polls the socket.
	// Exactly one receive attempt is made per tick.
	// Override via config: poll_interval, or the -interval flag.
	DefaultPollInterval = 1000 * time.Millisecond
)

// =============================================================================
// Probe Defaults
// =============================================================================

const (
	// DefaultProbeInterval is the heartbeat interval between station readings.
	// Override via config: probe.interval, or the -i flag (milliseconds).
	DefaultProbeInterval = 1000 * time.Millisecond
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the log level used when none is configured.
	// Override via config: log.level, or the -log-level flag.
	DefaultLogLevel = "info"
)

// =============================================================================
// Socket Path Resolution
// =============================================================================

// SocketPath resolves the datagram socket path.
//
// Resolution order: command line override, the QOS_SOCK environment
// variable, the configured value, then DefaultSocketPath. QOS_SOCK sits
// above the config file so producers written against the original
// collector keep their override.
func SocketPath(override, configured string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(SocketEnvVar); env != "" {
		return env
	}
	if configured != "" {
		return configured
	}
	return DefaultSocketPath()
}

// DefaultSocketPath returns the per-user default socket path.
//
// Prefers $XDG_RUNTIME_DIR, falls back to /run/user/<uid>, and finally the
// OS temp dir on systems without a per-user runtime directory. No directory
// is created here; a missing directory surfaces as a bind failure at open.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, DefaultSocketName)
	}

	runDir := fmt.Sprintf("/run/user/%d", os.Getuid())
	if info, err := os.Stat(runDir); err == nil && info.IsDir() {
		return filepath.Join(runDir, DefaultSocketName)
	}

	return filepath.Join(os.TempDir(), DefaultSocketName)
}
