package main

// Apply or inspect the upload_records, job_descriptions and job_rankings schema:
//   go run ./cmd/migrate            # same as "up"
//   go run ./cmd/migrate version

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/config"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/db"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

var timeout time.Duration

// migrator is swapped in tests.
var migrator = struct {
	connect func(ctx context.Context) (*sql.DB, error)
	up      func(ctx context.Context, database *sql.DB) error
	version func(ctx context.Context, database *sql.DB) (int64, error)
}{
	connect: func(ctx context.Context) (*sql.DB, error) {
		return db.Connect(ctx, config.Load().DatabaseURL, db.PoolFor(db.RoleMigrate))
	},
	up:      db.RunMigrations,
	version: db.SchemaVersion,
}

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUp,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE:  runUp,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, database *sql.DB) error {
			v, err := migrator.version(ctx, database)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	rootCmd.AddCommand(upCmd, versionCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, database *sql.DB) error {
		if err := migrator.up(ctx, database); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	})
}

func withDB(cmd *cobra.Command, fn func(context.Context, *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	database, err := migrator.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	return fn(ctx, database)
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	telemetry.Configure(telemetry.OptionsFromEnv())
	defer telemetry.Sync()

	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
