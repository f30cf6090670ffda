package main

import (
	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/storage"
	"github.com/carver-bot/carver/internal/worker"
)

func initStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, CurrentVersion, SlogManager)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return err
	}
	storageBackend = backend
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

// initWriter starts the background writer that records finished episodes
// and forwards telemetry points.
func initWriter() {
	deps := worker.Dependencies{
		Recorder:   storageBackend,
		LogManager: SlogManager,
		QueueSize:  config.GetStorageConfig().WriteQueue,
	}
	if influxManager != nil {
		deps.Sink = influxManager
	}
	episodeWriter = worker.NewManager(deps)
	episodeWriter.Start()
}
