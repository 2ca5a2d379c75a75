package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/parklot/backend/internal/infrastructure/config"
	"github.com/parklot/backend/internal/infrastructure/logger"
	"github.com/parklot/backend/internal/infrastructure/migration"
)

func main() {
	var (
		migrationsPath = flag.String("path", "migrations", "path to migration files")
		logLevel       = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	command := flag.Arg(0)

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	zapLogger, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		zapLogger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := migration.New(db, *migrationsPath, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "step":
		if flag.NArg() < 2 {
			zapLogger.Fatal("step requires a count, e.g. 'step 2' or 'step -1'")
		}
		var n int
		n, err = strconv.Atoi(flag.Arg(1))
		if err != nil {
			zapLogger.Fatal("Invalid step count", zap.String("arg", flag.Arg(1)))
		}
		err = migrator.Steps(n)
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = migrator.Version()
		if err == nil {
			zapLogger.Info("Migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
	case "force":
		if flag.NArg() < 2 {
			zapLogger.Fatal("force requires a version, e.g. 'force 1'")
		}
		var version int
		version, err = strconv.Atoi(flag.Arg(1))
		if err != nil {
			zapLogger.Fatal("Invalid version", zap.String("arg", flag.Arg(1)))
		}
		err = migrator.Force(version)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		zapLogger.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up              apply all pending migrations
  down            roll back all migrations
  step <n>        apply n migrations (negative rolls back)
  version         print the current migration version
  force <v>       force the version without running migrations

Flags:
  -path string       path to migration files (default "migrations")
  -log-level string  log level (default "info")`)
}
