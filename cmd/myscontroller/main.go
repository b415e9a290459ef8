// MySController - a protocol-aware proxy for MySensors networks.
//
// It sits between a gateway (serial, TCP or MQTT) and an optional
// upstream controller, services node-id allocation, sensor presentation
// indexing and over-the-air firmware delivery locally, forwards
// everything else, and exposes nodes and sensors over REST and the Web
// of Things.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsathishkumar/myscontroller-go/internal/api"
	"github.com/tsathishkumar/myscontroller-go/internal/firmware"
	"github.com/tsathishkumar/myscontroller-go/internal/gateway"
	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/config"
	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/database"
	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/logging"
	"github.com/tsathishkumar/myscontroller-go/internal/infrastructure/telemetry"
	"github.com/tsathishkumar/myscontroller-go/internal/node"
	"github.com/tsathishkumar/myscontroller-go/internal/proxy"
	"github.com/tsathishkumar/myscontroller-go/internal/wot"

	// Register the embedded schema migrations.
	_ "github.com/tsathishkumar/myscontroller-go/migrations"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "conf.toml", "path to the configuration file")
	flag.Parse()

	fmt.Printf("MySController %s (%s) built %s\n", version, commit, date)

	// Cancel on Ctrl+C / SIGTERM for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
		Output: "stdout",
	}, version)

	// Store and schema.
	db, err := database.Open(database.Config{
		Path:        cfg.Server.DatabaseURL,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database ready", "path", db.Path())

	nodes := node.NewSQLiteRepository(db.DB)
	sensors := node.NewSQLiteSensorRepository(db.DB)
	firmwares := firmware.NewSQLiteRepository(db.DB)

	// Optional telemetry sink.
	var recorder proxy.Recorder
	if cfg.Telemetry.Enabled {
		client, err := telemetry.Connect(ctx, cfg.Telemetry)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			client.SetOnError(func(err error) {
				logger.Warn("telemetry write failed", "error", err)
			})
			defer client.Close()
			recorder = client
			logger.Info("telemetry enabled", "url", cfg.Telemetry.URL)
		}
	}

	// Transport descriptors.
	gatewayDesc, err := gateway.DescriptorFromConfig(cfg.Gateway, false)
	if err != nil {
		return err
	}
	var controllerDesc *gateway.Descriptor
	if cfg.Controller != nil {
		desc, err := gateway.DescriptorFromConfig(*cfg.Controller, true)
		if err != nil {
			return err
		}
		controllerDesc = &desc
	} else {
		logger.Info("no controller configured, controller-bound traffic will be dropped")
	}

	// Message pipeline.
	p := proxy.New(proxy.Deps{
		Gateway:    gatewayDesc,
		Controller: controllerDesc,
		Nodes:      nodes,
		Sensors:    sensors,
		Firmwares:  firmwares,
		Recorder:   recorder,
		Logger:     logger.With("component", "proxy"),
	})

	// WoT bridge.
	bridge := wot.NewBridge(wot.NewRegistry(), p.NewSensors(), p.PropertyNotify(),
		p.SetFromWoT(), logger.With("component", "wot"))

	// HTTP surface.
	server := api.New(api.Deps{
		Listen:     cfg.Server.APIListen,
		JWTSecret:  cfg.Server.JWTSecret,
		Logger:     logger.With("component", "api"),
		Nodes:      nodes,
		Sensors:    sensors,
		Firmwares:  firmwares,
		Bridge:     bridge,
		GatewayOut: p.GatewayOut(),
		DB:         db,
		Version:    version,
	})

	go bridge.Run(ctx)
	server.Start(ctx)

	logger.Info("myscontroller started",
		"gateway", gatewayDesc.Kind, "api", cfg.Server.APIListen)

	// Run blocks until ctx is cancelled and the pipeline has drained.
	p.Run(ctx)

	logger.Info("myscontroller stopped")
	return nil
}
