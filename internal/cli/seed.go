package cli

import (
	"fmt"

	"toolshed/internal/repository"
	"toolshed/internal/seed"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load inventory or demo data",
	}
	cmd.AddCommand(seedInventoryCmd())
	cmd.AddCommand(seedDemoCmd())
	return cmd
}

func seedInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <file.yml>",
		Short: "Upsert inventory items from a YAML catalog",
		Long: `Upsert inventory items from a YAML catalog. Items are matched by code,
so re-running with an edited catalog updates names, descriptions and locations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := seed.LoadInventoryFile(args[0])
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := seed.Inventory(cmd.Context(), repository.NewInventoryRepository(db), items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d inventory items loaded from %s\n",
				color.New(color.FgGreen).Sprint("✓"), len(items), args[0])
			return nil
		},
	}
}

func seedDemoCmd() *cobra.Command {
	var opts seed.Options

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate fake users, tools and requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			sum, err := seed.Demo(cmd.Context(), db, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %d users, %d tools, %d requests\n",
				color.New(color.FgGreen).Sprint("✓"), sum.Users, sum.Tools, sum.Requests)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 5, "Number of users to create")
	cmd.Flags().IntVar(&opts.Tools, "tools", 20, "Number of inventory items to create")
	cmd.Flags().IntVar(&opts.Requests, "requests", 10, "Number of requests to create (at most one per tool)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed, 0 picks one")

	return cmd
}
