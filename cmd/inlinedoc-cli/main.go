package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shehackedyou/inlinedoc"
)

// Set at build time
var version = "dev"

func main() {
	filePath := flag.String("file", "", "Path to the source file (required)")
	offset := flag.Int("offset", -1, "Cursor byte offset (0-based; use instead of -line/-col)")
	line := flag.Int("line", 0, "Line number (1-based)")
	col := flag.Int("col", 0, "Column number (1-based, bytes)")
	backendAddr := flag.String("backend", "", "host:port of an external symbol backend - overrides config")
	logLevelFlag := flag.String("log-level", "", "Log level (debug, info, warn, error) - overrides config")
	flag.Parse()

	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, cfgErr := inlinedoc.LoadConfig(tempLogger)
	if cfgErr != nil && !errors.Is(cfgErr, inlinedoc.ErrConfig) {
		tempLogger.Error("Fatal error loading configuration", "error", cfgErr)
		os.Exit(1)
	}

	chosenLogLevelStr := cfg.LogLevel
	if *logLevelFlag != "" {
		chosenLogLevelStr = *logLevelFlag
	}
	logLevel, parseLevelErr := inlinedoc.ParseLogLevel(chosenLogLevelStr)
	if parseLevelErr != nil {
		tempLogger.Warn("Invalid log level specified, using default 'info'", "specified_level", chosenLogLevelStr, "error", parseLevelErr)
		logLevel = slog.LevelInfo
	}
	finalLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(finalLogger)

	if cfgErr != nil {
		slog.Warn("Configuration loaded with warnings", "error", cfgErr)
	}
	if *backendAddr != "" {
		cfg.BackendAddr = *backendAddr
	}

	// --- Input Validation ---
	if *filePath == "" {
		slog.Error("Missing required flag: -file")
		flag.Usage()
		os.Exit(1)
	}
	content, readErr := os.ReadFile(*filePath)
	if readErr != nil {
		slog.Error("Cannot read file provided via -file flag", "path", *filePath, "error", readErr)
		os.Exit(1)
	}

	cursor := *offset
	if cursor < 0 {
		if *line <= 0 || *col <= 0 {
			slog.Error("Provide either -offset or both -line and -col")
			flag.Usage()
			os.Exit(1)
		}
		var posErr error
		cursor, posErr = inlinedoc.OffsetForLineCol(content, *line, *col)
		if posErr != nil {
			slog.Error("Invalid -line/-col position", "line", *line, "col", *col, "error", posErr)
			os.Exit(1)
		}
	}

	// --- Engine Setup ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refreshed := make(chan struct{}, 1)
	refresh := func() {
		select {
		case refreshed <- struct{}{}:
		default:
		}
	}

	var backend inlinedoc.Backend
	if cfg.BackendAddr != "" {
		conn, dialErr := inlinedoc.DialBackend(ctx, cfg.BackendAddr, finalLogger)
		if dialErr != nil {
			slog.Error("Failed to connect to symbol backend", "addr", cfg.BackendAddr, "error", dialErr)
			os.Exit(1)
		}
		defer conn.Close()
		backend = inlinedoc.NewRemoteBackend(conn, "file://"+*filePath, finalLogger)
	}

	engine, engineErr := inlinedoc.NewEngine(string(content), backend, refresh, cfg, finalLogger)
	if engineErr != nil {
		slog.Error("Failed to create documentation engine", "error", engineErr)
		os.Exit(1)
	}
	defer engine.Close()

	// --- Query ---
	docLine, docErr := engine.DocumentAt(ctx, cursor)
	if docErr != nil {
		slog.Error("Documentation query failed", "offset", cursor, "error", docErr)
		os.Exit(1)
	}
	if docLine == "" && backend != nil {
		// Asynchronous backend: wait for the refresh request, then re-run the
		// tick which now reads the cached reply.
		spinner := inlinedoc.NewSpinner()
		spinner.Start("Waiting for symbol backend...")
		select {
		case <-refreshed:
		case <-ctx.Done():
		}
		spinner.Stop()
		docLine, docErr = engine.DocumentAt(ctx, cursor)
		if docErr != nil {
			slog.Error("Documentation query failed after refresh", "offset", cursor, "error", docErr)
			os.Exit(1)
		}
	}

	if docLine == "" {
		inlinedoc.PrettyPrint(inlinedoc.ColorYellow, "no documentation found\n")
		os.Exit(0)
	}
	fmt.Println(docLine)
}
