package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yigit/schooldir/internal/bootstrap"
	"github.com/yigit/schooldir/internal/config"
	"github.com/yigit/schooldir/internal/db"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "schoolctl",
	Short:        "School directory maintenance",
	Long:         `Runs database migrations, loads demo data and cleans up stored school images.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config.yaml")
}

// environment is what every subcommand needs: config, logger and a pool.
type environment struct {
	cfg      *config.Config
	log      zerolog.Logger
	database *db.PostgresDB
}

// connect loads the config and opens the pool. migrate controls whether the
// embedded migrations are applied first.
func connect(ctx context.Context, migrate bool) (*environment, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	var database *db.PostgresDB
	if migrate {
		database, err = bootstrap.SetupDatabase(ctx, cfg, lgr)
	} else {
		database, err = db.NewPostgresDB(ctx, cfg, lgr)
	}
	if err != nil {
		return nil, fmt.Errorf("db init failed: %w", err)
	}

	return &environment{cfg: cfg, log: lgr, database: database}, nil
}
