// qosmond is the WiFi link telemetry display daemon.
//
// It claims the local telemetry socket, polls it on a fixed interval and
// renders each valid record to the console. Producers (qosprobe, or the
// original C collector) push 24-byte records to the socket; qosmond never
// blocks waiting for them.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/qosmon/config"
	"github.com/xtxerr/qosmon/internal/display"
	"github.com/xtxerr/qosmon/internal/endpoint"
	"github.com/xtxerr/qosmon/internal/errors"
	"github.com/xtxerr/qosmon/internal/loader"
	"github.com/xtxerr/qosmon/internal/logging"
	"github.com/xtxerr/qosmon/internal/sampler"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "qosmon.yaml", "config file path")
	socket := flag.String("socket", "", "socket path (overrides config and QOS_SOCK)")
	interval := flag.Int("interval", 0, "poll interval in ms (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	logJSON := flag.Bool("log-json", false, "log in JSON format")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("qosmond %s starting...", Version)

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
	if *interval > 0 {
		cfg.Display.PollIntervalMs = *interval
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logJSON {
		cfg.Log.JSON = true
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
	// Claim the Telemetry Socket
	// =========================================================================

	sockPath := config.SocketPath(*socket, cfg.Socket.Path)
	log.Printf("Binding telemetry socket: %s", sockPath)

	ep, err := endpoint.Open(sockPath, cfg.Socket.ReceiveBuffer)
	if err != nil {
		log.Fatalf("Open endpoint: %v", err)
	}

	// =========================================================================
	// Build the Display Pipeline
	// =========================================================================

	sink := display.NewConsoleSink(os.Stdout)
	sink.Update("waiting for data...")

	loop := sampler.New(&sampler.Config{
		Endpoint: ep,
		Sink:     sink,
		Interval: time.Duration(cfg.Display.PollIntervalMs) * time.Millisecond,
	})

	// =========================================================================
	// Run until SIGINT/SIGTERM
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(ctx)
	})

	log.Printf("Polling %s every %dms", sockPath, cfg.Display.PollIntervalMs)

	runErr := g.Wait()

	// Clean shutdown removes the bound path
	if err := ep.Close(); err != nil {
		log.Printf("Warning: close endpoint: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Sampler: %v", runErr)
	}
	log.Println("Shutdown complete")
}
