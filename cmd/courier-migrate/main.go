// Package main is the entry point for the Courier schema migration tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/lkral/courier/internal/config"
	"github.com/lkral/courier/internal/pkg/logging"
	"github.com/lkral/courier/internal/repository/postgres"
	"github.com/lkral/courier/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is the store-facing surface both drivers provide.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Courier Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		if err := runUp(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "status":
		if err := runStatus(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUp(args []string) error {
	fs := flag.NewFlagSet("up", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	ctx := context.Background()
	m, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	version, err := m.MigrationVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Schema is up to date (version %d)\n", version)
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	ctx := context.Background()
	m, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer m.Close()

	version, err := m.MigrationVersion(ctx)
	if err != nil {
		// A store that was never migrated has no schema_migrations table.
		fmt.Println("Schema version: 0 (no migrations applied)")
		return nil
	}
	fmt.Printf("Schema version: %d\n", version)
	return nil
}

func open(ctx context.Context, configPath string) (migrator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging)

	switch cfg.Database.Driver {
	case "postgres":
		return postgres.NewDB(ctx, cfg.Database, logger)
	default:
		dbCfg := sqlite.DefaultConfig(cfg.Database.Path)
		dbCfg.JournalMode = cfg.Database.JournalMode
		dbCfg.BusyTimeout = cfg.Database.BusyTimeout
		return sqlite.NewDB(ctx, dbCfg, logger)
	}
}

func printUsage() {
	fmt.Println(`Courier Migration Tool

Usage:
  courier-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Examples:
  courier-migrate up -config courier.yaml
  courier-migrate status -config courier.yaml`)
}
