package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kavach/internal/infra"
)

var migrateDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending SQL migrations to the postgres store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := infra.NewDB(cmd.Context(), cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := infra.Migrate(cmd.Context(), pool, migrateDir)
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "directory holding *.sql migrations")
	rootCmd.AddCommand(migrateCmd)
}
