package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
)

// dbCmd groups database maintenance
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
	Long: `PostgreSQL helpers. Both subcommands need DATABASE_URL.

Subcommands:
  migrate - create tables and indexes (idempotent)
  ping    - connect, ping and show pool statistics

Example:
  go run ./cmd/predictor db migrate
  go run ./cmd/predictor db ping`,
}

var (
	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE:  runMigrate,
	}

	dbPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Test the database connection",
		RunE:  runPing,
	}
)

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbPingCmd)
}

func openDB() (*config.Config, *database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := tournament.NewRepository(db.Pool).Migrate(ctx); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func runPing(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(out, "Database URL: %s\n", redactURL(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	PrintSuccess(out, "Ping successful")
	fmt.Fprintf(out, "   Response Time: %v\n", status.ResponseTime)
	fmt.Fprintf(out, "   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Fprintln(out, "📊 Connection Pool Statistics:")
	fmt.Fprintf(out, "   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Fprintf(out, "   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Fprintf(out, "   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Fprintf(out, "   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Fprintf(out, "   Acquire Count: %d\n", status.Stats.AcquireCount)
	fmt.Fprintf(out, "   Acquire Duration: %v\n", status.Stats.AcquireDuration)

	return nil
}

// redactURL hides the password in a connection string
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
