// Package cli implements the toolshedctl operator commands.
package cli

import (
	"fmt"

	"toolshed/internal/config"
	"toolshed/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// openDB connects with the environment's configuration. Tests replace it.
var openDB = func() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// RootCmd returns the toolshedctl command tree.
func RootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "toolshedctl",
		Short:   "Operate a Toolshed database",
		Version: version,
		Long: `toolshedctl applies the schema, loads inventory catalogs, generates demo
data and inspects tool requests. It reads the same configuration as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(SeedCmd())
	rootCmd.AddCommand(RequestsCmd())

	return rootCmd
}
