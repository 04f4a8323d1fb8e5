package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"printfarm-backend/internal/db"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	var (
		configPath string
		seed       bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the schema for orders, printers, printables and push subscriptions.
With --seed the starter catalog (red, green and blue cubes) is inserted;
existing entries are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			gormDB, err := db.Open(&cfg.Database)
			if err != nil {
				return err
			}
			if err := db.Migrate(gormDB, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

			if seed || cfg.Database.SeedCatalog {
				n, err := db.SeedCatalog(gormDB)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog seeded (%d new printables)\n", n)
			}
			return nil
		},
	}
	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the starter catalog")
	return cmd
}
