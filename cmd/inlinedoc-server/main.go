package main

import (
	"context"
	"errors"
	"expvar"
	"io"
	stlog "log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/shehackedyou/inlinedoc"
)

// App version (set via linker flags -ldflags="-X main.appVersion=...")
var appVersion = "dev"

func main() {
	// Log to a file as well as stderr; stdout belongs to the RPC stream.
	logFile, err := os.OpenFile("inlinedoc-server.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0660)
	if err != nil {
		stlog.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	tempLogger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, cfgErr := inlinedoc.LoadConfig(tempLogger)
	if cfgErr != nil {
		if !errors.Is(cfgErr, inlinedoc.ErrConfig) {
			tempLogger.Error("Fatal error loading configuration", "error", cfgErr)
			os.Exit(1)
		}
		tempLogger.Warn("Configuration loaded with warnings", "error", cfgErr)
	}

	logLevel, parseLevelErr := inlinedoc.ParseLogLevel(cfg.LogLevel)
	if parseLevelErr != nil {
		logLevel = slog.LevelInfo
		tempLogger.Warn("Invalid log level in config, using default 'info'", "config_level", cfg.LogLevel, "error", parseLevelErr)
	}
	logWriter := io.MultiWriter(os.Stderr, logFile)
	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: logLevel, AddSource: true})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("inlinedoc server starting...", "version", appVersion, "log_level", logLevel.String())

	// When a backend address is configured, every opened document queries the
	// external engine over one shared connection; otherwise the built-in
	// declaration scanner answers from the buffer itself.
	var factory inlinedoc.BackendFactory
	if cfg.BackendAddr != "" {
		conn, dialErr := inlinedoc.DialBackend(context.Background(), cfg.BackendAddr, logger)
		if dialErr != nil {
			slog.Error("Failed to connect to symbol backend, falling back to buffer scanning", "addr", cfg.BackendAddr, "error", dialErr)
		} else {
			defer conn.Close()
			factory = func(uri string, doc *inlinedoc.Document) inlinedoc.Backend {
				return inlinedoc.NewRemoteBackend(conn, uri, logger)
			}
		}
	}

	startDebugServer()

	server := inlinedoc.NewServer(cfg, factory, logger, appVersion)
	server.Run(os.Stdin, os.Stdout)

	slog.Info("RPC server has shut down gracefully.")
}

// startDebugServer starts the HTTP server for pprof and expvar.
func startDebugServer() {
	debugListenAddr := "localhost:6062"
	go func() {
		slog.Info("Starting debug server for pprof/expvar", "addr", debugListenAddr)
		debugMux := http.NewServeMux()
		debugMux.HandleFunc("/debug/pprof/", http.DefaultServeMux.ServeHTTP)
		debugMux.HandleFunc("/debug/vars", expvar.Handler().ServeHTTP)
		if err := http.ListenAndServe(debugListenAddr, debugMux); err != nil {
			slog.Error("Debug server failed", "error", err)
		}
	}()
}
