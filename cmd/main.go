package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hufschlaeger.net/basecamp-cardtables/internal/cli"
	"hufschlaeger.net/basecamp-cardtables/internal/config"
	"hufschlaeger.net/basecamp-cardtables/internal/logger"
	"hufschlaeger.net/basecamp-cardtables/internal/repository/basecamp"
	"hufschlaeger.net/basecamp-cardtables/internal/service"
	"hufschlaeger.net/basecamp-cardtables/internal/storage/s3"
	"hufschlaeger.net/basecamp-cardtables/internal/tracing"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Fehler beim Laden der Konfiguration: %v\n", err)
		return 1
	}

	command, err := cli.ParseArgs(args, cfg)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Fehler beim Parsen der Flags: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Konfiguration ungültig: %v\n", err)
		return 1
	}

	if cfg.Verbose {
		cfg.Logging.Level = "debug"
	}
	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger konnte nicht erstellt werden: %v\n", err)
		return 1
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	client := basecamp.NewClient(cfg, basecamp.WithLogger(log))

	if command.Name == cli.CmdExport {
		if err := runExport(ctx, cfg, client); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Export fehlgeschlagen: %v\n", err)
			return 1
		}
		return 0
	}

	if err := cli.Run(ctx, command, client, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s fehlgeschlagen: %v\n", command.Name, err)
		return 1
	}
	return 0
}

func runExport(ctx context.Context, cfg *config.Config, client *basecamp.Client) error {
	if err := client.ValidateConnection(ctx); err != nil {
		return fmt.Errorf("Basecamp-Verbindung fehlgeschlagen: %w", err)
	}

	var uploader s3.Uploader
	if cfg.S3.Enabled() {
		store, err := s3.NewClient(ctx, cfg.S3)
		if err != nil {
			return err
		}
		if err := store.EnsureBucketExists(ctx); err != nil {
			return err
		}
		uploader = store
	}

	exporter := service.NewExporter(cfg, service.NewClientSource(client), uploader)
	_, err := exporter.Export(ctx)
	return err
}
