// qosprobe is the WiFi link telemetry producer.
//
// It reads per-station transmit statistics from an 802.11 interface via
// nl80211 and pushes one 24-byte record per heartbeat to the local telemetry
// socket, wire-compatible with the original C collector.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/qosmon/config"
	"github.com/xtxerr/qosmon/internal/errors"
	"github.com/xtxerr/qosmon/internal/loader"
	"github.com/xtxerr/qosmon/internal/logging"
	"github.com/xtxerr/qosmon/internal/probe"
)

// Version is set at build time via ldflags
var Version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <interface>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	// CLI flags
	cfgPath := flag.String("config", "qosmon.yaml", "config file path")
	socket := flag.String("socket", "", "socket path (overrides config and QOS_SOCK)")
	interval := flag.Int("i", -1, "heartbeat interval in ms, 0 emits one reading and exits (overrides config)")
	peer := flag.String("peer", "", "peer MAC address (default: associated BSSID)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	logJSON := flag.Bool("log-json", false, "log in JSON format")
	flag.Usage = usage
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("qosprobe %s starting...", Version)

	// Load config
	cfg, err := loader.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No config file found, using defaults")
			cfg = loader.DefaultConfig()
		} else {
			log.Fatalf("Load config: %v", err)
		}
	}

	// CLI overrides
	if *interval >= 0 {
		cfg.Probe.IntervalMs = *interval
	}
	if *peer != "" {
		cfg.Probe.Peer = *peer
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logJSON {
		cfg.Log.JSON = true
	}

	iface := cfg.Probe.Interface
	if flag.NArg() > 0 {
		iface = flag.Arg(0)
	}
	if iface == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Validate after overrides
	if err := loader.Validate(cfg); err != nil {
		log.Fatalf("Config: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Log level: %v", err)
	}
	logging.Init(level, cfg.Log.JSON)

	// =========================================================================
	// Resolve the Station Source
	// =========================================================================

	source, err := probe.NewWifiSource(iface, cfg.Probe.Peer)
	if err != nil {
		log.Fatalf("Open station source: %v", err)
	}
	log.Printf("Reading station %s on %s", source.Peer(), source.Interface())

	// =========================================================================
	// Start the Heartbeat
	// =========================================================================

	sockPath := config.SocketPath(*socket, cfg.Socket.Path)
	emitter := probe.NewEmitter(sockPath)

	hb := probe.New(&probe.Config{
		Source:   source,
		Emitter:  emitter,
		Interval: time.Duration(cfg.Probe.IntervalMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hb.Run(ctx)
	})

	if cfg.Probe.IntervalMs > 0 {
		log.Printf("Emitting to %s every %dms", sockPath, cfg.Probe.IntervalMs)
	} else {
		log.Printf("Emitting one reading to %s", sockPath)
	}

	runErr := g.Wait()

	if err := emitter.Close(); err != nil {
		log.Printf("Warning: close emitter: %v", err)
	}
	if err := source.Close(); err != nil {
		log.Printf("Warning: close station source: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Heartbeat: %v", runErr)
	}
	log.Println("Shutdown complete")
}
