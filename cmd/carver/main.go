package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/carver-bot/carver/internal/agent"
	"github.com/carver-bot/carver/internal/config"
	"github.com/carver-bot/carver/internal/influx"
	"github.com/carver-bot/carver/internal/logging"
	intOtel "github.com/carver-bot/carver/internal/otel"
	"github.com/carver-bot/carver/internal/storage"
	"github.com/carver-bot/carver/internal/worker"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.1.0"
	BuildDate      string = "unknown"

	ServiceName string = "carver"
)

// shutdownTimeout bounds the graceful stop of the listener and telemetry flush.
const shutdownTimeout = 5 * time.Second

// global variables
var (
	ConfigDir   string
	LogFilePath string
	LogFile     *os.File

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger feeds the dispatcher and the influx manager
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// Storage backend, shared by every session
	storageBackend storage.Backend

	// Engagement telemetry (optional)
	influxManager *influx.Manager

	// Background writer for episode records and telemetry points
	episodeWriter *worker.Manager
)

func setup() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	// load config
	if err := config.Load(ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", ConfigDir)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, ServiceName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      LogFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	if LogFile != nil {
		SlogManager.Setup(LogFile, viper.GetString("logLevel"), otelLogProvider)
		ZLogger = zerolog.New(LogFile).With().Timestamp().Logger().Level(zerologLevel(viper.GetString("logLevel")))
	} else {
		SlogManager.Setup(nil, viper.GetString("logLevel"), otelLogProvider)
		ZLogger = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerologLevel(viper.GetString("logLevel")))
	}
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)
}

func zerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func initInflux(ctx context.Context) {
	influxCfg := config.GetInfluxConfig()
	if !influxCfg.Enabled {
		return
	}
	backupPath := filepath.Join(viper.GetString("logsDir"),
		fmt.Sprintf("%s_influx_%s.log.gz", ServiceName, SessionStartTime.Format("20060102_150405")))

	m := influx.NewManager(influxCfg, ZLogger, backupPath)
	if err := m.Connect(ctx); err != nil {
		Logger.Error("Failed to initialize InfluxDB", "error", err)
		return
	}
	influxManager = m
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if episodeWriter != nil {
		episodeWriter.Close()
		if n := episodeWriter.Dropped(); n > 0 {
			Logger.Warn("Writes dropped on full queue", "count", n)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Warn("Failed to close storage backend", "error", err)
		}
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func run(ctx context.Context) error {
	agentCfg, err := agent.ConfigFrom(config.GetAgentConfig())
	if err != nil {
		return err
	}

	srv := newServer(serverDeps{
		AgentConfig: agentCfg,
		Monitor:     config.GetMonitorConfig(),
		Storage:     storageBackend,
		Influx:      influxManager,
		Writer:      episodeWriter,
	})

	mux := http.NewServeMux()
	mux.Handle("/agent", srv)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:              viper.GetString("server.addr"),
		Handler:           otelhttp.NewHandler(mux, ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		Logger.Info("Listening for hosts", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	Logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		Logger.Warn("Listener shutdown incomplete", "error", err)
	}
	wg.Wait()
	srv.Wait()
	return nil
}

func main() {
	ConfigDir = "."
	args := os.Args[1:]
	demo := len(args) > 0 && strings.ToLower(args[0]) == "demo"
	if demo {
		args = args[1:]
	}
	if len(args) > 0 {
		ConfigDir = args[0]
	}

	setup()
	defer shutdown()
	Logger.Info("Starting up...", "version", CurrentVersion, "buildDate", BuildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initStorage(); err != nil {
		Logger.Error("Storage initialization failed", "error", err)
		return
	}
	initInflux(ctx)

	if demo {
		// the demo reads strategy memory back right after each round, so it
		// records synchronously
		if err := runDemo(os.Stdout); err != nil {
			Logger.Error("Demo failed", "error", err)
		}
		return
	}

	initWriter()
	if err := run(ctx); err != nil {
		Logger.Error("Server stopped", "error", err)
	}
}
