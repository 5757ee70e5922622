package seed

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// The role and permission catalog ships as embedded goose files, same shape
// as the schema migrations, so fresh environments come up authorizable.
//
//go:embed sql/*.sql
var seedFS embed.FS

// Options selects the driver, target database and goose command for seeding.
type Options struct {
	Driver  string      // sqlite, postgres, mysql
	DSN     string      // ./crm.db for sqlite, full DSN otherwise
	Command string      // up, down, status, version, up-to, down-to, redo, reset
	Target  int64       // version for up-to/down-to
	Logger  *log.Logger // optional
}

// Run applies the embedded seed files. Empty Driver or DSN, or an empty seed
// directory, is a quiet no-op.
func Run(opts Options) error {
	if strings.TrimSpace(opts.Driver) == "" || strings.TrimSpace(opts.DSN) == "" {
		return nil
	}

	if !hasValidSeedFiles(opts.Logger) {
		return nil
	}

	if opts.Logger != nil {
		goose.SetLogger(opts.Logger)
	}
	goose.SetBaseFS(seedFS)
	// Versioned apart from schema_migrations so reseeding never replays DDL.
	goose.SetTableName("seed_migrations")

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	dir := "sql"
	switch strings.ToLower(strings.TrimSpace(opts.Command)) {
	case "", "up":
		return goose.Up(db, dir)
	case "down":
		return goose.Down(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "version":
		return goose.Version(db, dir)
	case "up-to":
		return goose.UpTo(db, dir, opts.Target)
	case "down-to":
		return goose.DownTo(db, dir, opts.Target)
	case "redo":
		return goose.Redo(db, dir)
	case "reset":
		return goose.Reset(db, dir)
	default:
		return fmt.Errorf("unknown seed command: %s", opts.Command)
	}
}

// hasValidSeedFiles reports whether seed/sql contains at least one file
// goose will accept, i.e. named VERSION_name.sql.
func hasValidSeedFiles(logger *log.Logger) bool {
	entries, err := seedFS.ReadDir("sql")
	if err != nil {
		if logger != nil {
			logger.Println("no seed SQL directory found, skipping seed")
		}
		return false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		if strings.Index(name, "_") > 0 {
			return true
		}
	}

	if logger != nil {
		logger.Println("no valid seed SQL files found (files must be named like 0001_name.sql), skipping seed")
	}
	return false
}

// RunFromEnv seeds at process start when SEED_ON_START is truthy. SEED_DRIVER
// and SEED_DSN pick the database, falling back to the MIGRATE_* pair so one
// set of env vars covers both steps. SEED_CMD defaults to up; SEED_TARGET
// feeds up-to/down-to.
func RunFromEnv() error {
	enabled := os.Getenv("SEED_ON_START")
	if !isTruthy(enabled) {
		return nil
	}

	cmd := strings.TrimSpace(os.Getenv("SEED_CMD"))
	if cmd == "" {
		cmd = "up"
	}

	var target int64
	if v := strings.TrimSpace(os.Getenv("SEED_TARGET")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			target = n
		}
	}

	driver := strings.TrimSpace(os.Getenv("SEED_DRIVER"))
	if driver == "" {
		driver = strings.TrimSpace(os.Getenv("MIGRATE_DRIVER"))
	}
	dsn := strings.TrimSpace(os.Getenv("SEED_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("MIGRATE_DSN"))
	}

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags)

	return Run(Options{
		Driver:  driver,
		DSN:     dsn,
		Command: cmd,
		Target:  target,
		Logger:  logger,
	})
}

func isTruthy(v string) bool {
	s := strings.TrimSpace(strings.ToLower(v))
	return s == "1" || s == "true" || s == "yes" || s == "y"
}
