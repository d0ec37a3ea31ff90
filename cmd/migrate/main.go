package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/pkg/logger"
)

const usage = `Usage: migrate [-timeout 2m] <command>

Commands:
  up       apply every pending migration
  down     roll back the latest migration
  status   print the state of every migration
  version  print the current schema version
`

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	if err := run(flag.Arg(0), *timeout); err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("migration failed")
		os.Exit(1)
	}
}

func run(command string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return err
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer db.Close()

	m := database.NewMigrator(db.Pool)
	defer m.Close()

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	case "version":
		v, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", command)
}
