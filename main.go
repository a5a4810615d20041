package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pension720/cmd"
	"pension720/config"
	"pension720/database"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error:", err)
	}
	if err := applyFlags(cfg, os.Args[1:]); err != nil {
		log.Fatal("Configuration error:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal("Application error:", err)
	}
}

// applyFlags lets command line flags override the environment
func applyFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("pension720", flag.ContinueOnError)
	fs.BoolVar(&cfg.SkipFetch, "skip-fetch", cfg.SkipFetch, "re-aggregate the stored history without fetching")
	fs.IntVar(&cfg.TicketCount, "count", cfg.TicketCount, "number of recommendations (0 skips generation)")
	fs.Int64Var(&cfg.Cycle, "cycle", cfg.Cycle, "cycle value mixed into generation")
	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "seed string mixed into generation")
	fs.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "report format: plain or markdown")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "storage backend: file or postgres")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg.Validate()
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: pension720 migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}
