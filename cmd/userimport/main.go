// userimport is the one-time migration tool for the historical
// users.txt credential file. Run it once against a fresh database and
// throw the file away.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"dashboard-serverless/internal/auth"
	"dashboard-serverless/internal/db"
	"dashboard-serverless/internal/legacy"
	"dashboard-serverless/internal/observability"
)

func main() {
	filePath := flag.String("file", "users.txt", "path to the legacy username,hash file")
	migrate := flag.Bool("migrate", true, "run schema migrations before importing")
	flag.Parse()

	_ = godotenv.Load()
	logger := observability.NewLogger()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("missing_database_url", nil)
		os.Exit(1)
	}

	database, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("open_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		logger.Error("ping_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if *migrate {
		if err := db.RunMigrations(database); err != nil {
			logger.Error("migrations_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}

	report, err := legacy.ImportUsersFile(context.Background(), *filePath, auth.NewRepository(database))
	if err != nil {
		logger.Error("import_failed", map[string]any{
			"error":    err.Error(),
			"imported": report.Imported,
			"skipped":  report.Skipped,
			"invalid":  report.Invalid,
		})
		os.Exit(1)
	}

	logger.Info("import_completed", map[string]any{
		"file":     *filePath,
		"imported": report.Imported,
		"skipped":  report.Skipped,
		"invalid":  report.Invalid,
	})
}
