package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wasteatlas/wasteatlas/internal/pkg/config"
	"github.com/wasteatlas/wasteatlas/internal/pkg/logging"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("wasteatlas-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	files, err := migrationFiles(migrationsDir, os.Args[1])
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		fmt.Printf("OK  %s\n", f)
	}
	slog.Info("migrations applied", "direction", os.Args[1], "files", len(files))
}

// migrationFiles lists "NNN_name.sql" files in order for up, and their
// "NNN_name.down.sql" counterparts in reverse order for down.
func migrationFiles(dir, direction string) ([]string, error) {
	all, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	slices.Sort(all)

	var out []string
	switch direction {
	case "up":
		for _, f := range all {
			if !strings.HasSuffix(f, ".down.sql") {
				out = append(out, f)
			}
		}
	case "down":
		for _, f := range all {
			if strings.HasSuffix(f, ".down.sql") {
				out = append(out, f)
			}
		}
		slices.Reverse(out)
	default:
		return nil, fmt.Errorf("unknown command: %s", direction)
	}
	return out, nil
}
