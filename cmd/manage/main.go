// Command manage runs maintenance tasks against the yatube database:
// migrations, demo data, group fixtures, cache clearing and deletes.
package main

import (
	"context"
	"fmt"
	"os"

	"yatube/internal/config"
	"yatube/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "manage",
	Short:         "Maintenance commands for yatube",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads the configuration and opens the database without touching
// the schema.
func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

// connectMigrated is connect plus ApplySchema, for commands that write rows.
func connectMigrated(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, db, err := connect()
	if err != nil {
		return nil, nil, err
	}
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("apply schema: %w", err)
	}
	return cfg, db, nil
}
