// PinHub Core - token-addressed HTTP-to-device bridge.
//
// This is the main entry point for the PinHub Core server. It wires the
// profile registry, session registry, router and HTTP surface together
// with the optional MQTT state mirror and InfluxDB pin telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/pinhub-core/migrations"

	"github.com/nerrad567/pinhub-core/internal/api"
	"github.com/nerrad567/pinhub-core/internal/dispatch"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/config"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/database"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/pinhub-core/internal/infrastructure/tsdb"
	"github.com/nerrad567/pinhub-core/internal/project"
	"github.com/nerrad567/pinhub-core/internal/routing"
	"github.com/nerrad567/pinhub-core/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting PinHub Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and bring the schema up to date
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", db.Path())

	// Load user profiles and token bindings into the registry
	repo := project.NewSQLiteRepository(db.DB)
	profiles := project.NewRegistry(repo)
	profiles.SetLogger(log)
	if refreshErr := profiles.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading profiles: %w", refreshErr)
	}
	log.Info("profiles loaded", "projects", profiles.ProjectCount())

	// Session registry for live hardware and app transports
	sessions := session.NewRegistry()
	sessions.SetLogger(log)

	// Fire-and-forget push and mail delivery
	dispatcher := dispatch.New(dispatch.Config{
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
	}, nil, nil, log)
	defer dispatcher.Close()

	// Optional MQTT state mirror
	var mirror routing.Mirror
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		mirror = mqtt.NewMirror(mqttClient)
	} else {
		log.Info("MQTT state mirror disabled")
	}

	// Optional pin telemetry
	var telemetry routing.Telemetry
	if cfg.InfluxDB.Enabled {
		tsdbClient, tsdbErr := tsdb.Connect(cfg.InfluxDB)
		if tsdbErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", tsdbErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		tsdbClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		telemetry = tsdbClient
	} else {
		log.Info("pin telemetry disabled")
	}

	router := routing.New(routing.Deps{
		Profiles:   profiles,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Mirror:     mirror,
		Telemetry:  telemetry,
		Logger:     log,
	})

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Router:   router,
		Sessions: sessions,
		Profiles: profiles,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PINHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PINHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
