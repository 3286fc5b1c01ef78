package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mechanix-app/mechanix-backend/pkg/config"
	"github.com/mechanix-app/mechanix-backend/pkg/db"
	"github.com/mechanix-app/mechanix-backend/pkg/logger"
	"github.com/mechanix-app/mechanix-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	var (
		command = flag.String("command", "up", "goose command: up, down, status, version, validate, create")
		dir     = flag.String("dir", migrate.DefaultDir, "migrations directory")
		version = flag.String("to", "", "target version for up-to/down-to (YYYYMMDDHHMMSS)")
		name    = flag.String("name", "", "migration name for create")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *command, *dir, *version, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command, dir, version, name string) error {
	// Commands without a database connection.
	switch command {
	case "validate":
		return migrate.ValidateDir(dir)
	case "create":
		if name == "" {
			return fmt.Errorf("-name is required for create")
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "mechanix-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	if version != "" {
		return migrate.MigrateToVersion(ctx, sqlDB, dir, version)
	}
	return migrate.Run(ctx, sqlDB, dir, command)
}
