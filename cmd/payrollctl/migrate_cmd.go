package main

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			stmts, err := migrations.Statements()
			if err != nil {
				return err
			}

			db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolConfig{MaxConns: 2, MinConns: 1})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			for i, stmt := range stmts {
				if _, err := db.Exec(cmd.Context(), stmt); err != nil {
					return fmt.Errorf("migration %d: %w", i+1, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(stmts))
			return nil
		},
	}
}
