package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chatwave/repositories"
	"chatwave/runtime"
	"chatwave/runtime/workers"
	"chatwave/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle.
// Returning an error instead of exiting directly keeps the deferred
// cleanups (database close, supervisor stop) running on every path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	maskChar, err := maskRune(config.MaskCharacter)
	if err != nil {
		return err
	}

	// 2. File index (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("file index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components
	registry := runtime.NewRegistry(log)
	store, err := storage.NewDiskStore(config.FilesDir, log)
	if err != nil {
		return err
	}
	index := repositories.NewFileIndexRepository(db, log)

	moderator, err := runtime.NewEmbeddedModerator(log, maskChar)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	server := runtime.NewServer(log, registry, store, index, moderator)
	if err := server.Listen(fmt.Sprintf("%s:%d", config.Host, config.Port)); err != nil {
		return err
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision: the accept loop and the health monitor run as
	// supervised workers; Run blocks until shutdown.
	sup := workers.NewSupervisor(log)
	sup.Add(server)
	sup.Add(workers.NewHealthMonitoringWorker(log, registry.Online, config.MetricInterval))

	log.Info("Starting ChatWave server", "host", config.Host, "port", config.Port)
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}

func maskRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("MASK_CHARACTER must be a single character, got %q", str)
	}
	return r[0], nil
}
